package app

import "context"

// KV is the durable storage the cart survives restarts through. Implementations
// live in infra/kv; tests use the memory adapter.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Notifier surfaces short-lived confirmations to the shopper. Fire and forget.
type Notifier interface {
	Notify(message string)
}

type NopNotifier struct{}

func (NopNotifier) Notify(string) {}
