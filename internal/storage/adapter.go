// Package storage is the containment boundary between the collection store
// and the kv backends: reads degrade to empty values and writes to no-ops,
// so no storage failure ever propagates to a caller.
package storage

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/spendlens/spark/internal/errs"
	"github.com/spendlens/spark/internal/kv"
)

// Adapter wraps a kv.Store with JSON (de)serialization and error absorption.
type Adapter struct {
	store kv.Store
	log   *zap.Logger
}

// New constructs an adapter over the given backend.
func New(store kv.Store, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{store: store, log: log}
}

// Delete removes the value at key; failures are logged and swallowed.
func (a *Adapter) Delete(ctx context.Context, key string) {
	if err := a.store.Delete(ctx, key); err != nil {
		a.log.Warn("storage delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the underlying backend.
func (a *Adapter) Close() error { return a.store.Close() }

// ReadList returns the list stored at key. A missing key, an unavailable
// backend, or a malformed payload all yield an empty slice; the caller
// always gets something it can range over.
func ReadList[T any](ctx context.Context, a *Adapter, key string) []T {
	raw, err := a.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			a.log.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		}
		return []T{}
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		a.log.Warn("malformed stored data", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	if list == nil {
		list = []T{}
	}
	return list
}

// WriteList serializes and stores the list at key. On failure the previous
// value stays intact and the call is a logged no-op.
func WriteList[T any](ctx context.Context, a *Adapter, key string, list []T) {
	if list == nil {
		list = []T{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		a.log.Warn("storage marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := a.store.Set(ctx, key, raw); err != nil {
		a.log.Warn("storage write failed", zap.String("key", key), zap.Error(err))
	}
}

// ReadValue returns the single value stored at key, reporting presence via
// the second return. Failures degrade to absent.
func ReadValue[T any](ctx context.Context, a *Adapter, key string) (T, bool) {
	var v T
	raw, err := a.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			a.log.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		a.log.Warn("malformed stored data", zap.String("key", key), zap.Error(err))
		var zero T
		return zero, false
	}
	return v, true
}

// WriteValue serializes and stores a single value at key; failures are
// logged no-ops.
func WriteValue[T any](ctx context.Context, a *Adapter, key string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		a.log.Warn("storage marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := a.store.Set(ctx, key, raw); err != nil {
		a.log.Warn("storage write failed", zap.String("key", key), zap.Error(err))
	}
}
