package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/festipay/festipay/internal/middleware"
	"github.com/festipay/festipay/internal/models"
	"github.com/festipay/festipay/internal/service"
)

// LedgerService defines the ledger-core operations required by the HTTP
// handlers.
type LedgerService interface {
	IssueCard(ctx context.Context, actor *models.User, initialBalance int64) (models.Card, models.Result)
	TopUpCard(ctx context.Context, actor *models.User, cardID string, amount int64) bool
	ProcessPayment(ctx context.Context, actor *models.User, cardID string, cart []models.CartItem) models.Result
	CorrectCardBalance(ctx context.Context, actor *models.User, cardID string, amount int64, reason string) models.Result
	TransferCardData(ctx context.Context, actor *models.User, oldCardID, newCardID string) models.Result
	UpdateCardStatus(ctx context.Context, actor *models.User, cardID string, status models.CardStatus) bool
	LinkCard(ctx context.Context, actor *models.User, userID, cardID string) models.Result
	AddProduct(ctx context.Context, actor *models.User, name string, price int64) (models.Product, models.Result)
	DeleteProduct(ctx context.Context, actor *models.User, productID string) models.Result
	Products() []models.Product
	Cards() []models.Card
	Users() []models.User
	GetCard(cardID string) (models.Card, bool)
	CardOwner(cardID string) (models.User, bool)
	TransactionsForCard(cardID string) []models.Transaction
}

// LedgerHandler exposes the ledger core over HTTP.
type LedgerHandler struct {
	// LedgerService performs the underlying ledger operations.
	LedgerService LedgerService
}

// IssueCard handles POST /api/cards.
func (h *LedgerHandler) IssueCard(w http.ResponseWriter, r *http.Request) {
	var req IssueCardRequest
	if !decodeValid(w, r, &req) {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	card, res := h.LedgerService.IssueCard(r.Context(), actor, req.InitialBalance)
	if !res.OK {
		writeResult(w, res)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// TopUp handles POST /api/cards/{id}/topup.
func (h *LedgerHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	var req TopUpRequest
	if !decodeValid(w, r, &req) {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	if !h.LedgerService.TopUpCard(r.Context(), actor, chi.URLParam(r, "id"), req.Amount) {
		writeResult(w, models.Fail("Card not found."))
		return
	}
	writeJSON(w, http.StatusOK, models.Ok("Card topped up successfully!"))
}

// Payment handles POST /api/cards/{id}/payment.
func (h *LedgerHandler) Payment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !decodeValid(w, r, &req) {
		return
	}
	cart := make([]models.CartItem, 0, len(req.Cart))
	for _, item := range req.Cart {
		cart = append(cart, models.CartItem{
			Product:  models.Product{ID: item.ID, Name: item.Name, Price: item.Price},
			Quantity: item.Quantity,
		})
	}
	actor := middleware.ActorFromContext(r.Context())
	writeResult(w, h.LedgerService.ProcessPayment(r.Context(), actor, chi.URLParam(r, "id"), cart))
}

// Correct handles POST /api/cards/{id}/correct.
func (h *LedgerHandler) Correct(w http.ResponseWriter, r *http.Request) {
	var req CorrectRequest
	if !decodeValid(w, r, &req) {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	writeResult(w, h.LedgerService.CorrectCardBalance(r.Context(), actor, chi.URLParam(r, "id"), req.Amount, req.Reason))
}

// Transfer handles POST /api/cards/transfer.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decodeValid(w, r, &req) {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	writeResult(w, h.LedgerService.TransferCardData(r.Context(), actor, req.OldCardID, req.NewCardID))
}

// Status handles POST /api/cards/{id}/status.
func (h *LedgerHandler) Status(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeValid(w, r, &req) {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	if !h.LedgerService.UpdateCardStatus(r.Context(), actor, chi.URLParam(r, "id"), req.Status) {
		writeResult(w, models.Fail("Card not found."))
		return
	}
	writeJSON(w, http.StatusOK, models.Ok("Card status updated."))
}

// Link handles POST /api/cards/{id}/link. Without a userId in the body
// the card is linked to the acting user.
func (h *LedgerHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !decodeValid(w, r, &req) {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	userID := req.UserID
	if userID == "" && actor != nil {
		userID = actor.ID
	}
	writeResult(w, h.LedgerService.LinkCard(r.Context(), actor, userID, chi.URLParam(r, "id")))
}

// ListCards handles GET /api/cards.
func (h *LedgerHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.LedgerService.Cards())
}

// ListUsers handles GET /api/users. Backs the reset-request queue and
// account lookups, so password hashes are stripped from the response.
func (h *LedgerHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.LedgerService.Users()
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCard handles GET /api/cards/{id}. Users see only their own linked
// cards; staff see every card.
func (h *LedgerHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")
	actor := middleware.ActorFromContext(r.Context())
	if !service.CanViewCard(actor, cardID) {
		writeJSON(w, http.StatusForbidden, models.Fail(service.MsgNotPermitted))
		return
	}
	card, ok := h.LedgerService.GetCard(cardID)
	if !ok {
		writeResult(w, models.Fail("Card not found."))
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Owner handles GET /api/cards/{id}/owner, the super admin's owner
// lookup.
func (h *LedgerHandler) Owner(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.LedgerService.CardOwner(chi.URLParam(r, "id"))
	if !ok {
		writeResult(w, models.Fail("Card is not linked to any account."))
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(owner))
}

// Transactions handles GET /api/cards/{id}/transactions, newest first.
func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "id")
	actor := middleware.ActorFromContext(r.Context())
	if !service.CanViewCard(actor, cardID) {
		writeJSON(w, http.StatusForbidden, models.Fail(service.MsgNotPermitted))
		return
	}
	txns := h.LedgerService.TransactionsForCard(cardID)
	if txns == nil {
		txns = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// ListProducts handles GET /api/products.
func (h *LedgerHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.LedgerService.Products())
}

// AddProduct handles POST /api/products.
func (h *LedgerHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if !decodeValid(w, r, &req) {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	product, res := h.LedgerService.AddProduct(r.Context(), actor, req.Name, req.Price)
	if !res.OK {
		writeResult(w, res)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id}.
func (h *LedgerHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	writeResult(w, h.LedgerService.DeleteProduct(r.Context(), actor, chi.URLParam(r, "id")))
}
