package ratelimiter

import (
	"errors"
	"sync"
	"time"
)

var ErrBucketMiss = errors.New("bucket not found")

// BucketStore persists token buckets by source key. Expired buckets read as
// misses so an idle client starts over with a full burst.
type BucketStore interface {
	Load(key string) (bucketState, error)
	Save(key string, state bucketState, ttl time.Duration) error
	Close() error
}

type memoryEntry struct {
	state     bucketState
	expiresAt time.Time
}

type memoryStore struct {
	mu      sync.RWMutex
	buckets map[string]memoryEntry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore keeps buckets in process and sweeps expired ones every
// sweepInterval.
func NewMemoryStore(sweepInterval time.Duration) BucketStore {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	s := &memoryStore{
		buckets: make(map[string]memoryEntry),
		stop:    make(chan struct{}),
	}
	go s.sweep(sweepInterval)

	return s
}

func (s *memoryStore) Load(key string) (bucketState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.buckets[key]
	if !ok || entry.expired(time.Now()) {
		return bucketState{}, ErrBucketMiss
	}
	return entry.state, nil
}

func (s *memoryStore) Save(key string, state bucketState, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.buckets[key] = memoryEntry{state: state, expiresAt: expiresAt}
	s.mu.Unlock()

	return nil
}

func (s *memoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *memoryStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets)
}

func (s *memoryStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.removeExpired(now)
		case <-s.stop:
			return
		}
	}
}

func (s *memoryStore) removeExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.buckets {
		if entry.expired(now) {
			delete(s.buckets, key)
		}
	}
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
