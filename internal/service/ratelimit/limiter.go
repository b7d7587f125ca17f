package ratelimit

import (
    "context"
    "sync"

    "golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key (client address, upstream host).
type Limiter struct {
    mu    sync.RWMutex
    m     map[string]*rate.Limiter
    rps   float64
    burst int
}

func New(rps float64, burst int) *Limiter {
    if burst < 1 {
        burst = 1
    }
    return &Limiter{m: make(map[string]*rate.Limiter), rps: rps, burst: burst}
}

func (l *Limiter) get(key string) *rate.Limiter {
    l.mu.RLock()
    b, ok := l.m[key]
    l.mu.RUnlock()
    if ok {
        return b
    }
    l.mu.Lock()
    defer l.mu.Unlock()
    if b, ok := l.m[key]; ok {
        return b
    }
    b = rate.NewLimiter(rate.Limit(l.rps), l.burst)
    l.m[key] = b
    return b
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
    return l.get(key).Allow()
}

// Wait blocks until a token for key is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
    return l.get(key).Wait(ctx)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
    l.mu.RLock()
    defer l.mu.RUnlock()
    return len(l.m)
}
