// Package lock provides keyed mutual exclusion for short critical sections.
//
// The engine serializes two things per key: person check-then-create for a
// given normalized email, and processing of a single submission id. The
// in-process Locker covers a single-instance deployment; the Redis Locker
// extends the same contract across processes.
package lock

import (
	"context"
	"sync"
)

// Locker grants exclusive ownership of a string key until release is called.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex is the in-process Locker. Entries are reference-counted so the
// key table does not grow with every email ever seen.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

func (k *KeyedMutex) Acquire(_ context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			e.mu.Unlock()
			k.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
	return release, nil
}
