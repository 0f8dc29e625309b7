package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/authclient/internal/config"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// TokenPurger removes bearer tokens past their expiry.
type TokenPurger interface {
	PurgeExpiredTokens() (int64, error)
}

// TokenSweepScheduler periodically clears expired tokens from the account table
type TokenSweepScheduler struct {
	purger TokenPurger
	config config.Sweep

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

// NewTokenSweepScheduler creates a new scheduler instance
func NewTokenSweepScheduler(purger TokenPurger, cfg config.Sweep) *TokenSweepScheduler {
	return &TokenSweepScheduler{
		purger: purger,
		config: cfg,
		cron:   cron.New(cron.WithParser(cronParser)),
	}
}

// ValidateCronSchedule validates a standard five-field cron expression
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// Start begins the scheduler if the sweep is enabled
func (s *TokenSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Token sweep scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Token sweep scheduler: started with schedule '%s'. Next run: %v",
		s.config.Schedule, s.nextRunLocked())

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running sweep to finish and stops the scheduler
func (s *TokenSweepScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.cron.Remove(s.entryID)
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	// runSweep takes the lock, so wait for running jobs outside of it.
	<-s.cron.Stop().Done()
	if cancel != nil {
		cancel()
	}

	log.Printf("Token sweep scheduler: stopped")
}

// RunNow triggers an immediate sweep and returns the number of purged tokens
func (s *TokenSweepScheduler) RunNow() (int64, error) {
	return s.purger.PurgeExpiredTokens()
}

// IsRunning returns whether the scheduler is active
func (s *TokenSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur
func (s *TokenSweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	return s.nextRunLocked()
}

func (s *TokenSweepScheduler) nextRunLocked() *time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep performs the actual purge
func (s *TokenSweepScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Token sweep: skipped (already sweeping)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	startTime := time.Now()
	purged, err := s.purger.PurgeExpiredTokens()
	if err != nil {
		log.Printf("Token sweep: failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("Token sweep: cleared %d expired tokens in %v", purged, time.Since(startTime))
	}
}
