// Package kv defines the string-keyed slot store the ledger persists into.
//
// The ledger only ever reads and writes whole slots (one serialized
// collection per key), so the port stays deliberately small.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a slot has never been written.
var ErrNotFound = errors.New("kv: slot not found")

// Store is the persistence port for ledger slots.
type Store interface {
	// Get returns the current value of a slot, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value of a slot, creating it if absent.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
