package apikey

import (
	"context"
	"sync"

	"github.com/dmitrymomot/apimgmt/pkg/domain"
)

// keyedMutex hands out one mutex per key and forgets it once nobody holds
// or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// lock blocks until key is free and returns the matching unlock.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Every key mutation locks the owning application, whatever its key mode.
func applicationLock(id string) string { return "application:" + id }

// lockStored locks the application owning key id and returns the key as
// stored once the lock is held.
func (s *service) lockStored(ctx context.Context, id string) (domain.APIKey, func(), error) {
	key, err := s.FindByID(ctx, id)
	if err != nil {
		return domain.APIKey{}, nil, err
	}
	unlock := s.locks.lock(applicationLock(key.Application))
	current, err := s.FindByID(ctx, id)
	if err != nil {
		unlock()
		return domain.APIKey{}, nil, err
	}
	return current, unlock, nil
}
