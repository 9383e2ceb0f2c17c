package http

import "github.com/festipay/festipay/internal/models"

// RegisterRequest is the JSON payload for registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the JSON payload for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ResetRequest asks an administrator for a password reset.
type ResetRequest struct {
	Username string `json:"username" validate:"required"`
}

// AdminResetRequest carries the replacement password.
type AdminResetRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

// IssueCardRequest carries the opening balance of a new card.
type IssueCardRequest struct {
	InitialBalance int64 `json:"initialBalance"`
}

// TopUpRequest carries the top-up amount.
type TopUpRequest struct {
	Amount int64 `json:"amount"`
}

// CartItemRequest is one line of a payment cart.
type CartItemRequest struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
}

// PaymentRequest carries the cart charged against a card.
type PaymentRequest struct {
	Cart []CartItemRequest `json:"cart" validate:"required,min=1,dive"`
}

// CorrectRequest carries an administrative balance correction.
type CorrectRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason" validate:"required"`
}

// TransferRequest moves a card's value and ownership to a new id.
// NewCardID is left unvalidated here: the ledger owns the blank-id
// failure message.
type TransferRequest struct {
	OldCardID string `json:"oldCardId" validate:"required"`
	NewCardID string `json:"newCardId"`
}

// StatusRequest sets a card's status.
type StatusRequest struct {
	Status models.CardStatus `json:"status" validate:"required,oneof=active inactive"`
}

// LinkRequest links a card to an account. UserID defaults to the actor.
type LinkRequest struct {
	UserID string `json:"userId"`
}

// AddProductRequest adds a catalog entry.
type AddProductRequest struct {
	Name  string `json:"name" validate:"required"`
	Price int64  `json:"price" validate:"gte=0"`
}

// UserResponse is the outward shape of a user; the password hash never
// leaves the process.
type UserResponse struct {
	ID                     string      `json:"id"`
	Username               string      `json:"username"`
	CardIDs                []string    `json:"cardIds"`
	Role                   models.Role `json:"role"`
	Email                  string      `json:"email"`
	PasswordResetRequested bool        `json:"passwordResetRequested"`
}

// toUserResponse strips a user down to its outward shape.
func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:                     u.ID,
		Username:               u.Username,
		CardIDs:                u.CardIDs,
		Role:                   u.Role,
		Email:                  u.Email,
		PasswordResetRequested: u.PasswordResetRequested,
	}
}

// LoginResponse returns the operation result plus, on success, the
// session token and the logged-in user.
type LoginResponse struct {
	models.Result
	Token string        `json:"token,omitempty"`
	User  *UserResponse `json:"user,omitempty"`
}
