package storage

import (
	"context"
	"errors"
)

// KV is the durable key-value storage the cart and promo state are persisted
// to. Every Set is a full overwrite of the value held under key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
