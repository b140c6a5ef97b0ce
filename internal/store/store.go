// Package store implements the reactive collection store: named JSON-array
// collections with create/update/find and synchronous per-collection
// change notification.
package store

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spendlens/spark/internal/model"
	"github.com/spendlens/spark/internal/storage"
)

// Record constrains collection element types to structs embedding model.Meta.
type Record[T any] interface {
	*T
	RecordMeta() *model.Meta
}

// Store owns the adapter and the registry of known collections so ClearAll
// can reset every one of them. Construct it once in the composition root;
// there are no package-level singletons.
type Store struct {
	adapter *storage.Adapter
	log     *zap.Logger

	mu          sync.Mutex
	collections map[string]any
	resets      map[string]func(ctx context.Context)
}

// NewStore constructs a Store over the given adapter.
func NewStore(adapter *storage.Adapter, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		adapter:     adapter,
		log:         log,
		collections: make(map[string]any),
		resets:      make(map[string]func(context.Context)),
	}
}

// Adapter exposes the underlying adapter for single-value slots (the session).
func (s *Store) Adapter() *storage.Adapter { return s.adapter }

// ClearAll resets every registered collection to an empty list, persists
// each, and notifies each collection's subscribers with the empty list.
func (s *Store) ClearAll(ctx context.Context) {
	s.mu.Lock()
	resets := make([]func(context.Context), 0, len(s.resets))
	for _, fn := range s.resets {
		resets = append(resets, fn)
	}
	s.mu.Unlock()
	for _, fn := range resets {
		fn(ctx)
	}
	s.log.Info("store cleared", zap.Int("collections", len(resets)))
}

// Close closes the underlying adapter.
func (s *Store) Close() error { return s.adapter.Close() }

// Collection is a typed view over one storage key. All mutations persist the
// full list and invoke subscribers synchronously, exactly once per call,
// with the post-write list.
type Collection[T any, PT Record[T]] struct {
	store *Store
	key   string

	mu      sync.Mutex
	subs    map[int]func([]T)
	nextSub int
}

// NewCollection binds a typed collection to a storage key and registers it
// with the store for ClearAll fan-out. Bindings are memoized per key: asking
// for the same key again returns the same collection, so every caller shares
// one subscriber list. Binding one key to two different record types is a
// wiring bug and panics at construction time.
func NewCollection[T any, PT Record[T]](s *Store, key string) *Collection[T, PT] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.collections[key]; ok {
		c, ok := existing.(*Collection[T, PT])
		if !ok {
			panic("store: key " + key + " already bound to a different record type")
		}
		return c
	}
	c := &Collection[T, PT]{store: s, key: key, subs: make(map[int]func([]T))}
	s.collections[key] = c
	s.resets[key] = c.reset
	return c
}

// Key returns the storage key this collection is bound to.
func (c *Collection[T, PT]) Key() string { return c.key }

// List returns the current contents of the collection, oldest first.
func (c *Collection[T, PT]) List(ctx context.Context) []T {
	return storage.ReadList[T](ctx, c.store.adapter, c.key)
}

// Create assigns a fresh id and timestamps, appends the record, persists,
// notifies subscribers, and returns the stored record.
func (c *Collection[T, PT]) Create(ctx context.Context, data T) T {
	c.mu.Lock()
	list := storage.ReadList[T](ctx, c.store.adapter, c.key)
	now := time.Now().UTC()
	m := PT(&data).RecordMeta()
	m.ID = newID()
	m.CreatedAt = now
	m.UpdatedAt = now
	list = append(list, data)
	storage.WriteList(ctx, c.store.adapter, c.key, list)
	subs := c.snapshotSubs()
	c.mu.Unlock()
	notify(subs, list)
	return data
}

// Update locates the record by id, applies patch, refreshes updatedAt,
// persists, and notifies. A missing id reports false; nothing is thrown.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, patch func(*T)) (T, bool) {
	c.mu.Lock()
	list := storage.ReadList[T](ctx, c.store.adapter, c.key)
	for i := range list {
		if PT(&list[i]).RecordMeta().ID != id {
			continue
		}
		patch(&list[i])
		PT(&list[i]).RecordMeta().UpdatedAt = time.Now().UTC()
		storage.WriteList(ctx, c.store.adapter, c.key, list)
		rec := list[i]
		subs := c.snapshotSubs()
		c.mu.Unlock()
		notify(subs, list)
		return rec, true
	}
	c.mu.Unlock()
	var zero T
	return zero, false
}

// Find returns the records matching pred; a pure filter with no side effects.
func (c *Collection[T, PT]) Find(ctx context.Context, pred func(T) bool) []T {
	list := storage.ReadList[T](ctx, c.store.adapter, c.key)
	out := []T{}
	for _, rec := range list {
		if pred(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Subscribe registers fn to be called synchronously after every mutation of
// this collection, with the full post-write list. The returned func removes
// exactly this registration; other subscribers, including ones registered
// with an identical callback, are unaffected.
func (c *Collection[T, PT]) Subscribe(fn func([]T)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tok := c.nextSub
	c.nextSub++
	c.subs[tok] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, tok)
	}
}

// snapshotSubs copies the current subscriber set; called with c.mu held.
// Callbacks run after the mutex is released so a subscriber may unsubscribe
// itself or mutate the collection without deadlocking; each mutation still
// notifies synchronously, exactly once, with the post-write list.
func (c *Collection[T, PT]) snapshotSubs() []func([]T) {
	subs := make([]func([]T), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify[T any](subs []func([]T), list []T) {
	for _, fn := range subs {
		fn(list)
	}
}

// reset writes an empty list and notifies; used by Store.ClearAll.
func (c *Collection[T, PT]) reset(ctx context.Context) {
	c.mu.Lock()
	empty := []T{}
	storage.WriteList(ctx, c.store.adapter, c.key, empty)
	subs := c.snapshotSubs()
	c.mu.Unlock()
	notify(subs, empty)
}

// newID returns a unique id: base-36 unix-millisecond prefix plus a random
// hex suffix. Monotonic enough for a demo store; not a cryptographic token.
func newID() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		binary.BigEndian.PutUint32(b[:4], uint32(time.Now().UnixNano()))
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + hex.EncodeToString(b[:])
}
