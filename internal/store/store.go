// Package store provides the persistent key→JSON store the ledger writes
// through: every collection is kept under one logical key and rewritten
// whole on each mutation.
package store

import "context"

// Collection keys used by the ledger.
const (
	KeyProducts     = "products"
	KeyCards        = "cards"
	KeyTransactions = "transactions"
	KeyUsers        = "users"
)

// KV is a synchronous key→JSON-value store surviving process restarts.
type KV interface {
	// Get returns the raw JSON stored under key, or (nil, nil) if the
	// key has never been written.
	// ctx carries deadlines, cancellation signals, and other request-scoped values.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores the raw JSON under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
}
