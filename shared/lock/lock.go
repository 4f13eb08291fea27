// Package lock serializes booking mutations per (selector, date).
package lock

import (
	"context"
	"errors"
	"hash/fnv"
	"slices"
	"sync"

	"appointer/internal/scheduling/calendar"
	"appointer/internal/scheduling/conflict"
)

var ErrNotAcquired = errors.New("lock not acquired before deadline")

// Locker acquires every key or none. The returned unlock releases them all
// and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// Key is the lock name guarding one resource dimension on one day.
func Key(sel conflict.Selector, date calendar.Date) string {
	return "booking:" + sel.Key() + ":" + date.String()
}

// normalize sorts and dedups keys so concurrent callers acquire in the same
// order.
func normalize(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)

	return slices.Compact(out)
}

type memoryLocker struct {
	stripes []sync.Mutex
}

// NewMemory returns a process-local striped lock. Distinct keys may share a
// stripe; that only costs parallelism.
func NewMemory(stripes int) Locker {
	if stripes <= 0 {
		stripes = 1
	}

	return &memoryLocker{stripes: make([]sync.Mutex, stripes)}
}

func (m *memoryLocker) stripe(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))

	return int(h.Sum32() % uint32(len(m.stripes)))
}

func (m *memoryLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrNotAcquired, err)
	}

	indexes := make([]int, 0, len(keys))
	for _, key := range normalize(keys) {
		indexes = append(indexes, m.stripe(key))
	}

	slices.Sort(indexes)
	indexes = slices.Compact(indexes)

	held := make([]int, 0, len(indexes))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			m.stripes[held[i]].Unlock()
		}
	}

	for _, idx := range indexes {
		if err := m.acquire(ctx, idx); err != nil {
			release()

			return nil, err
		}

		held = append(held, idx)
	}

	var once sync.Once

	return func() { once.Do(release) }, nil
}

func (m *memoryLocker) acquire(ctx context.Context, idx int) error {
	for {
		if m.stripes[idx].TryLock() {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Join(ErrNotAcquired, ctx.Err())
		case <-tick():
		}
	}
}
