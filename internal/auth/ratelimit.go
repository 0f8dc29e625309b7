package auth

import (
	"sync"
	"time"
)

// RateLimiter limits login attempts per IP+username over a fixed window.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	cfg      RateLimitConfig
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int           // Maximum attempts before lockout (default: 5)
	WindowDuration  time.Duration // Time window for counting attempts (default: 15m)
	LockoutDuration time.Duration // How long to lock out after max attempts (default: 30m)
	CleanupInterval time.Duration // How often to drop stale records (default: 5m)
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		attempts: make(map[string]*attemptRecord),
		cfg:      cfg,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup loop. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func attemptKey(ip, username string) string {
	return ip + ":" + username
}

// Allow reports whether a login attempt may proceed and, if not, how long
// the caller has to wait.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, ok := rl.attempts[attemptKey(ip, username)]
	if !ok {
		return true, 0
	}

	now := rl.now()
	if now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	windowEnd := record.firstAttempt.Add(rl.cfg.WindowDuration)
	if now.After(windowEnd) {
		return true, 0
	}
	if record.count < rl.cfg.MaxAttempts {
		return true, 0
	}
	// Lockout already over but the window is still full.
	return false, windowEnd.Sub(now)
}

// RecordFailure counts a failed attempt and reports whether it triggered a lockout.
func (rl *RateLimiter) RecordFailure(ip, username string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	key := attemptKey(ip, username)
	record, ok := rl.attempts[key]
	if !ok || now.Sub(record.firstAttempt) > rl.cfg.WindowDuration {
		record = &attemptRecord{firstAttempt: now}
		rl.attempts[key] = record
	}

	record.count++
	if record.count >= rl.cfg.MaxAttempts {
		record.lockedUntil = now.Add(rl.cfg.LockoutDuration)
		return true
	}
	return false
}

// RecordSuccess forgets previous failures.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.attempts, attemptKey(ip, username))
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, record := range rl.attempts {
		if now.Sub(record.firstAttempt) > rl.cfg.WindowDuration && !now.Before(record.lockedUntil) {
			delete(rl.attempts, key)
		}
	}
}
