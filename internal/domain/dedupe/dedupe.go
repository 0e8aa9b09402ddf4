// Package dedupe tracks keys that already have work in flight so a second
// request for the same key can be answered without doing the work twice.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records in-flight keys.
type Deduper interface {
	// SeenAndRecord atomically reports whether key is already pending and
	// records it if not.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord releases key once its work has finished or was rejected.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// pendingSet keeps keys in insertion order so the oldest can be evicted
// when a capacity is set.
type pendingSet struct {
	mu      sync.Mutex
	keys    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &pendingSet{
		keys:  make(map[string]*list.Element),
		order: list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *pendingSet) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.keys[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.keys) >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.keys, oldest.Value.(string))
	}
	d.keys[key] = d.order.PushBack(key)
	return false
}

func (d *pendingSet) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.keys[key]; ok {
		d.order.Remove(el)
		delete(d.keys, key)
	}
}

func (d *pendingSet) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.keys))
}
