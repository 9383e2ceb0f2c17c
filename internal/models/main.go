// Package models defines the core data structures for the event wallet:
// products, stored-value cards, users and the append-only transaction log.
package models

// Role defines the set of access levels a user account can hold.
type Role string

const (
	// RoleUser is the default role assigned at registration.
	RoleUser Role = "USER"
	// RoleAdmin can operate the point of sale, issue and top up cards.
	RoleAdmin Role = "ADMIN"
	// RoleSuperAdmin can additionally manage products, handle password
	// reset requests and open per-card administrative detail.
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// CardStatus defines the lifecycle states of a card.
type CardStatus string

const (
	// CardActive marks a card usable for payment.
	CardActive CardStatus = "active"
	// CardInactive marks a retired card; payments against it are rejected.
	CardInactive CardStatus = "inactive"
)

// Product is a catalog entry. Prices are whole event credits.
type Product struct {
	// ID is the unique identifier for the product.
	ID string `json:"id"`
	// Name is the display name shown at the point of sale.
	Name string `json:"name"`
	// Price is the unit price in credits.
	Price int64 `json:"price"`
}

// Card is a bearer token with stored value. Cards are never deleted,
// only deactivated.
type Card struct {
	// ID is the card identifier, system-generated on issuance or
	// administrator-chosen on transfer.
	ID string `json:"id"`
	// Balance is the stored value in credits. Signed: corrections may
	// drive it toward zero but a payment may never drive it negative.
	Balance int64 `json:"balance"`
	// Status is either CardActive or CardInactive.
	Status CardStatus `json:"status"`
}

// User is an account. A user owns zero or more cards by reference;
// a card is listed by at most one user system-wide.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the unique login name.
	Username string `json:"username"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte `json:"passwordHash"`
	// CardIDs lists the cards linked to this account, in link order.
	CardIDs []string `json:"cardIds"`
	// Role is the account's access level.
	Role Role `json:"role"`
	// Email is a contact address, placeholder-derived at registration.
	Email string `json:"email"`
	// PasswordResetRequested is set when the user asks an administrator
	// for a password reset and cleared when the reset is performed.
	PasswordResetRequested bool `json:"passwordResetRequested"`
}

// TransactionItem is one line of a transaction. Name and price are
// snapshots taken at sale time; later catalog changes never touch them.
type TransactionItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int64  `json:"quantity"`
	Price       int64  `json:"price"`
}

// Transaction is one immutable record of a balance-affecting event.
// For a sale, Total is the positive amount spent (display layers render
// the sign); for a correction it is the signed delta. The log is
// append-only and is never replayed to derive balances.
type Transaction struct {
	ID        string            `json:"id"`
	CardID    string            `json:"cardId"`
	Items     []TransactionItem `json:"items"`
	Total     int64             `json:"total"`
	Timestamp int64             `json:"timestamp"`
}

// CartItem is a product plus a quantity, the input of a payment.
type CartItem struct {
	Product
	Quantity int64 `json:"quantity"`
}

// Result is the uniform outcome shape of every ledger and auth
// operation: a flag plus a human-readable message surfaced verbatim.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Ok builds a successful Result with the given message.
func Ok(message string) Result { return Result{OK: true, Message: message} }

// Fail builds a failed Result with the given message.
func Fail(message string) Result { return Result{OK: false, Message: message} }
