package ratelimiter

import (
	"context"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/hilthontt/ridehail/internal/infrastructure/configs"
)

const (
	bucketKeyPrefix = "rl:bucket:"
	lockStripes     = 256
)

type peerContextKey struct{}

type Limiter interface {
	Allow(sourceKey string) bool
	GetSourceKey(r *http.Request) string
	Remaining(sourceKey string) int
	GetMaxBurst() int
}

type RateLimiter struct {
	maxRatePerMillisecond float64
	maxBurst              int
	store                 BucketStore
	bucketTTL             time.Duration
	sourceHeaderKey       string
	// Sources hash onto a fixed set of locks so unseen keys cost no memory.
	locks [lockStripes]sync.Mutex
}

func (rl *RateLimiter) getLock(sourceKey string) *sync.Mutex {
	return &rl.locks[xxhash.Sum64String(sourceKey)%lockStripes]
}

func (rl *RateLimiter) getBucketKeyFor(sourceKey string) string {
	return bucketKeyPrefix + sourceKey
}

type bucketState struct {
	tokens   int
	lastFill int64 // Unix milliseconds
}

func (rl *RateLimiter) getState(sourceKey string) bucketState {
	state, err := rl.store.Load(rl.getBucketKeyFor(sourceKey))
	if err != nil {
		// Misses and store failures both start from a full bucket (fail open).
		return bucketState{
			tokens:   rl.maxBurst,
			lastFill: time.Now().UnixMilli(),
		}
	}
	return state
}

func (rl *RateLimiter) setState(sourceKey string, state bucketState) {
	_ = rl.store.Save(rl.getBucketKeyFor(sourceKey), state, rl.bucketTTL)
}

func (rl *RateLimiter) refillTokens(state bucketState, now int64) bucketState {
	elapsed := now - state.lastFill
	if elapsed <= 0 {
		return state // No time has passed
	}

	tokensToAdd := math.Floor(float64(elapsed) * rl.maxRatePerMillisecond)
	if tokensToAdd < 1 {
		return state // Keep lastFill so partial tokens accumulate
	}

	newTokens := state.tokens + int(tokensToAdd)
	if newTokens >= rl.maxBurst {
		return bucketState{
			tokens:   rl.maxBurst,
			lastFill: now,
		}
	}

	// Advance only by the time the whole tokens account for
	return bucketState{
		tokens:   newTokens,
		lastFill: state.lastFill + int64(tokensToAdd/rl.maxRatePerMillisecond),
	}
}

func (rl *RateLimiter) Remaining(sourceKey string) int {
	lock := rl.getLock(sourceKey)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UnixMilli()
	state := rl.getState(sourceKey)
	newState := rl.refillTokens(state, now)

	// Only write back when the refill changed something
	if newState.tokens != state.tokens || newState.lastFill != state.lastFill {
		rl.setState(sourceKey, newState)
	}

	return newState.tokens
}

func (rl *RateLimiter) GetMaxBurst() int {
	return rl.maxBurst
}

func (rl *RateLimiter) Allow(sourceKey string) bool {
	lock := rl.getLock(sourceKey)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UnixMilli()
	state := rl.getState(sourceKey)
	newState := rl.refillTokens(state, now)

	// Check if we have tokens available
	if newState.tokens > 0 {
		newState.tokens--
		rl.setState(sourceKey, newState)
		return true
	}

	// No tokens available - still update state if refill occurred
	if newState.lastFill != state.lastFill {
		rl.setState(sourceKey, newState)
	}

	return false
}

// PeerMiddleware records the socket peer address before any middleware
// rewrites RemoteAddr from client supplied headers.
func PeerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerContextKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSourceKey keys on the connecting peer. When a source header is
// configured only its last hop counts, since that is the one the trusted
// proxy appended; earlier hops are whatever the client sent.
func (rl *RateLimiter) GetSourceKey(r *http.Request) string {
	if rl.sourceHeaderKey != "" {
		if value := r.Header.Get(rl.sourceHeaderKey); value != "" {
			if i := strings.LastIndexByte(value, ','); i >= 0 {
				value = value[i+1:]
			}
			if hop := strings.TrimSpace(value); hop != "" {
				return hop
			}
		}
	}
	return peerHost(r)
}

func peerHost(r *http.Request) string {
	addr, ok := r.Context().Value(peerContextKey{}).(string)
	if !ok {
		addr = r.RemoteAddr
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	Store            BucketStore
	CacheTTL         time.Duration
	SourceHeaderKey  string
}

func NewOptions(cfg configs.RateLimiterConfig) Options {
	return Options{
		MaxRatePerSecond: cfg.MaxRatePerSecond,
		MaxBurst:         cfg.MaxBurst,
		CacheTTL:         cfg.CacheTTL,
		SourceHeaderKey:  cfg.SourceHeaderKey,
	}
}

func New(options Options) Limiter {
	if options.CacheTTL == 0 {
		options.CacheTTL = 10 * time.Second
	}

	if options.Store == nil {
		options.Store = NewMemoryStore(options.CacheTTL)
	}

	if options.MaxBurst <= 0 {
		options.MaxBurst = options.MaxRatePerSecond // Reasonable default
	}

	return &RateLimiter{
		maxRatePerMillisecond: float64(options.MaxRatePerSecond) / 1000.0,
		maxBurst:              options.MaxBurst,
		store:                 options.Store,
		bucketTTL:             options.CacheTTL,
		sourceHeaderKey:       options.SourceHeaderKey,
	}
}
