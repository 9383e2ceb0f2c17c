// Package service implements the ledger core and the session/auth gate:
// every operation that reads or writes card balances, appends transaction
// records, or manages users routes through here.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/festipay/festipay/internal/models"
	"github.com/festipay/festipay/internal/store"
)

// MsgNotPermitted is returned by every gated operation when the acting
// user's role does not allow it.
const MsgNotPermitted = "Not permitted."

// Ledger owns the four entity collections and is the single choke-point
// for balance mutations: each mutating operation performs its
// read-modify-write and its paired transaction append under one lock,
// then persists the affected collections.
type Ledger struct {
	mu sync.Mutex
	kv store.KV
	lg *zap.Logger

	// now is the clock, replaceable in tests.
	now func() time.Time

	products     []models.Product
	cards        []models.Card
	transactions []models.Transaction
	users        []models.User
}

// NewLedger loads all collections from the store and, on a cold start
// with no users, seeds the sample catalog and staff accounts.
func NewLedger(ctx context.Context, kv store.KV, lg *zap.Logger) (*Ledger, error) {
	l := &Ledger{kv: kv, lg: lg, now: time.Now}

	if err := load(ctx, kv, store.KeyProducts, &l.products); err != nil {
		return nil, err
	}
	if err := load(ctx, kv, store.KeyCards, &l.cards); err != nil {
		return nil, err
	}
	if err := load(ctx, kv, store.KeyTransactions, &l.transactions); err != nil {
		return nil, err
	}
	if err := load(ctx, kv, store.KeyUsers, &l.users); err != nil {
		return nil, err
	}

	if len(l.users) == 0 {
		if err := l.seed(); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		l.persist(ctx, store.KeyProducts, store.KeyCards, store.KeyUsers)
		lg.Info("seeded initial data",
			zap.Int("products", len(l.products)),
			zap.Int("cards", len(l.cards)),
			zap.Int("users", len(l.users)),
		)
	}

	return l, nil
}

// load rehydrates one collection; an unwritten key leaves the zero slice.
func load[T any](ctx context.Context, kv store.KV, key string, dst *[]T) error {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// persist writes the named collections to the store. Persistence is
// fire-and-forget: a write failure is logged, the in-memory state stays
// authoritative for this running instance.
func (l *Ledger) persist(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var v any
		switch key {
		case store.KeyProducts:
			v = l.products
		case store.KeyCards:
			v = l.cards
		case store.KeyTransactions:
			v = l.transactions
		case store.KeyUsers:
			v = l.users
		}
		data, err := json.Marshal(v)
		if err != nil {
			l.lg.Error("marshal collection", zap.String("key", key), zap.Error(err))
			continue
		}
		if err := l.kv.Put(ctx, key, data); err != nil {
			l.lg.Error("persist collection", zap.String("key", key), zap.Error(err))
		}
	}
}

// findCard returns a pointer into the card collection, or nil.
// Callers must hold l.mu.
func (l *Ledger) findCard(id string) *models.Card {
	for i := range l.cards {
		if l.cards[i].ID == id {
			return &l.cards[i]
		}
	}
	return nil
}

// findUser returns a pointer into the user collection, or nil.
// Callers must hold l.mu.
func (l *Ledger) findUser(id string) *models.User {
	for i := range l.users {
		if l.users[i].ID == id {
			return &l.users[i]
		}
	}
	return nil
}

// cardOwner returns the user listing cardID, or nil. Callers must hold l.mu.
func (l *Ledger) cardOwner(cardID string) *models.User {
	for i := range l.users {
		if slices.Contains(l.users[i].CardIDs, cardID) {
			return &l.users[i]
		}
	}
	return nil
}

// IssueCard creates a new active card with a fresh id and the given
// balance. The balance is deliberately unvalidated. Issuance appends no
// transaction.
func (l *Ledger) IssueCard(ctx context.Context, actor *models.User, initialBalance int64) (models.Card, models.Result) {
	if !CanPerform(actor, OpIssueCard) {
		return models.Card{}, models.Fail(MsgNotPermitted)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	card := models.Card{
		ID:      uuid.NewString(),
		Balance: initialBalance,
		Status:  models.CardActive,
	}
	l.cards = append(l.cards, card)
	l.persist(ctx, store.KeyCards)

	l.lg.Info("card issued", zap.String("card", card.ID), zap.Int64("balance", card.Balance))
	return card, models.Ok("Card issued successfully!")
}

// TopUpCard adds amount to the card's balance. Returns false for an
// unknown card or a refused actor. Top-ups append no transaction; only
// payments and corrections are logged.
func (l *Ledger) TopUpCard(ctx context.Context, actor *models.User, cardID string, amount int64) bool {
	if !CanPerform(actor, OpTopUpCard) {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	card := l.findCard(cardID)
	if card == nil {
		return false
	}
	card.Balance += amount
	l.persist(ctx, store.KeyCards)

	l.lg.Info("card topped up",
		zap.String("card", cardID),
		zap.Int64("amount", amount),
		zap.Int64("balance", card.Balance),
	)
	return true
}

// ProcessPayment charges the cart total against the card and appends one
// transaction snapshotting the sold items. The transaction's Total is
// the positive amount spent.
func (l *Ledger) ProcessPayment(ctx context.Context, actor *models.User, cardID string, cart []models.CartItem) models.Result {
	if !CanPerform(actor, OpProcessPayment) {
		return models.Fail(MsgNotPermitted)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	card := l.findCard(cardID)
	if card == nil {
		return models.Fail("Card not found.")
	}
	if card.Status == models.CardInactive {
		return models.Fail("Card is inactive.")
	}

	var total int64
	for _, item := range cart {
		total += item.Price * item.Quantity
	}
	if card.Balance < total {
		return models.Fail(fmt.Sprintf("Insufficient funds. Balance: %d ◎", card.Balance))
	}

	card.Balance -= total

	items := make([]models.TransactionItem, 0, len(cart))
	for _, item := range cart {
		items = append(items, models.TransactionItem{
			ProductID:   item.ID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	l.transactions = append(l.transactions, models.Transaction{
		ID:        uuid.NewString(),
		CardID:    cardID,
		Items:     items,
		Total:     total,
		Timestamp: l.now().UnixMilli(),
	})
	l.persist(ctx, store.KeyCards, store.KeyTransactions)

	l.lg.Info("payment processed",
		zap.String("card", cardID),
		zap.Int64("total", total),
		zap.Int64("balance", card.Balance),
	)
	return models.Ok(fmt.Sprintf("Payment successful! New balance: %d ◎", card.Balance))
}

// CorrectCardBalance applies a signed administrative delta and appends a
// transaction carrying the reason. The only operation that can move a
// balance in both directions under one name, and it always logs.
func (l *Ledger) CorrectCardBalance(ctx context.Context, actor *models.User, cardID string, amount int64, reason string) models.Result {
	if !CanPerform(actor, OpCorrectBalance) {
		return models.Fail(MsgNotPermitted)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	card := l.findCard(cardID)
	if card == nil {
		return models.Fail("Card not found.")
	}
	if card.Balance+amount < 0 {
		return models.Fail("Correction would result in a negative balance.")
	}

	card.Balance += amount
	l.transactions = append(l.transactions, models.Transaction{
		ID:     uuid.NewString(),
		CardID: cardID,
		Items: []models.TransactionItem{{
			ProductID:   "admin-correction",
			ProductName: "Admin: " + reason,
			Quantity:    1,
			Price:       amount,
		}},
		Total:     amount,
		Timestamp: l.now().UnixMilli(),
	})
	l.persist(ctx, store.KeyCards, store.KeyTransactions)

	l.lg.Info("balance corrected",
		zap.String("card", cardID),
		zap.Int64("amount", amount),
		zap.String("reason", reason),
	)
	return models.Ok("Balance corrected successfully.")
}

// TransferCardData re-issues a card's value under a new administrator-
// chosen id. The new card starts active with the old card's balance; the
// old card is deactivated with its balance untouched, so it nominally
// still holds its last value but is rejected at sale time. Any owning
// user's card list is rewritten from the old id to the new one. No
// transaction is appended.
func (l *Ledger) TransferCardData(ctx context.Context, actor *models.User, oldCardID, newCardID string) models.Result {
	if !CanPerform(actor, OpTransferCard) {
		return models.Fail(MsgNotPermitted)
	}
	if strings.TrimSpace(newCardID) == "" {
		return models.Fail("New Card ID cannot be empty.")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	oldCard := l.findCard(oldCardID)
	if oldCard == nil {
		return models.Fail("Original card not found.")
	}
	if l.findCard(newCardID) != nil {
		return models.Fail("The new Card ID already exists.")
	}

	if owner := l.cardOwner(oldCardID); owner != nil {
		ids := slices.DeleteFunc(slices.Clone(owner.CardIDs), func(id string) bool {
			return id == oldCardID
		})
		owner.CardIDs = append(ids, newCardID)
	}

	oldCard.Status = models.CardInactive
	l.cards = append(l.cards, models.Card{
		ID:      newCardID,
		Balance: oldCard.Balance,
		Status:  models.CardActive,
	})
	l.persist(ctx, store.KeyCards, store.KeyUsers)

	l.lg.Info("card transferred",
		zap.String("from", oldCardID),
		zap.String("to", newCardID),
	)
	return models.Ok(fmt.Sprintf("Card %s successfully transferred to %s.", oldCardID, newCardID))
}

// UpdateCardStatus sets the card's status directly. Returns false for an
// unknown card or a refused actor.
func (l *Ledger) UpdateCardStatus(ctx context.Context, actor *models.User, cardID string, status models.CardStatus) bool {
	if !CanPerform(actor, OpUpdateCardStatus) {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	card := l.findCard(cardID)
	if card == nil {
		return false
	}
	card.Status = status
	l.persist(ctx, store.KeyCards)

	l.lg.Info("card status updated", zap.String("card", cardID), zap.String("status", string(status)))
	return true
}

// LinkCard attaches a card to a user's account, enforcing the
// one-owner-per-card invariant at link time. A USER may only link cards
// to their own account.
func (l *Ledger) LinkCard(ctx context.Context, actor *models.User, userID, cardID string) models.Result {
	if !CanPerform(actor, OpLinkCard) {
		return models.Fail(MsgNotPermitted)
	}
	if actor.Role == models.RoleUser && actor.ID != userID {
		return models.Fail(MsgNotPermitted)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.findCard(cardID) == nil {
		return models.Fail("Card ID not found.")
	}
	if l.cardOwner(cardID) != nil {
		return models.Fail("This card is already linked to another account.")
	}
	user := l.findUser(userID)
	if user == nil {
		return models.Fail("User not found.")
	}

	user.CardIDs = append(user.CardIDs, cardID)
	l.persist(ctx, store.KeyUsers)

	l.lg.Info("card linked", zap.String("card", cardID), zap.String("user", userID))
	return models.Ok("Card linked successfully!")
}

// AddProduct appends a catalog entry.
func (l *Ledger) AddProduct(ctx context.Context, actor *models.User, name string, price int64) (models.Product, models.Result) {
	if !CanPerform(actor, OpManageProducts) {
		return models.Product{}, models.Fail(MsgNotPermitted)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p := models.Product{ID: uuid.NewString(), Name: name, Price: price}
	l.products = append(l.products, p)
	l.persist(ctx, store.KeyProducts)
	return p, models.Ok("Product added.")
}

// DeleteProduct removes a catalog entry. Historical transactions keep
// their name/price snapshots.
func (l *Ledger) DeleteProduct(ctx context.Context, actor *models.User, productID string) models.Result {
	if !CanPerform(actor, OpManageProducts) {
		return models.Fail(MsgNotPermitted)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.products = slices.DeleteFunc(l.products, func(p models.Product) bool {
		return p.ID == productID
	})
	l.persist(ctx, store.KeyProducts)
	return models.Ok("Product deleted.")
}

// Products returns a copy of the catalog.
func (l *Ledger) Products() []models.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.products)
}

// Cards returns a copy of the card collection.
func (l *Ledger) Cards() []models.Card {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.cards)
}

// GetCard looks up a single card by id.
func (l *Ledger) GetCard(cardID string) (models.Card, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if card := l.findCard(cardID); card != nil {
		return *card, true
	}
	return models.Card{}, false
}

// CardOwner returns the user whose account lists the card.
func (l *Ledger) CardOwner(cardID string) (models.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if owner := l.cardOwner(cardID); owner != nil {
		return *owner, true
	}
	return models.User{}, false
}

// Users returns a copy of the account collection. Callers that cross a
// trust boundary must strip password hashes before serializing.
func (l *Ledger) Users() []models.User {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.users)
}

// UserByID looks up a user by id.
func (l *Ledger) UserByID(userID string) (models.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u := l.findUser(userID); u != nil {
		return *u, true
	}
	return models.User{}, false
}

// TransactionsForCard returns the card's transactions, newest first.
func (l *Ledger) TransactionsForCard(cardID string) []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	var txns []models.Transaction
	for _, t := range l.transactions {
		if t.CardID == cardID {
			txns = append(txns, t)
		}
	}
	slices.SortFunc(txns, func(a, b models.Transaction) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		default:
			return 0
		}
	})
	return txns
}
