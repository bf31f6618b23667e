package expiration

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	sentry "github.com/getsentry/sentry-go"
)

// Notifier receives the report of a run that downgraded at least one ad.
// Implementations must not block the pipeline on delivery failures.
type Notifier interface {
	NotifyDowngradeRun(ctx context.Context, result Result)
}

// SchedulerConfig holds the guard timing knobs.
type SchedulerConfig struct {
	// Cooldown is the minimum time between permitted runs.
	Cooldown time.Duration
	// WatchdogTimeout force-resets a guard stuck in Running. A run that
	// exceeds it is presumed dead; this is a safety valve, not a
	// correctness guarantee, since the underlying store call is not
	// cancelled and may still commit later. That overlap is tolerated
	// because re-running on an already-downgraded ad is a no-op.
	WatchdogTimeout time.Duration
}

// Scheduler decides when the scan+commit pipeline may run and protects it
// against overlapping triggers. The guard is process-local only: deployed
// across multiple instances it provides no cross-process exclusion, which
// is acceptable solely because runs are idempotent per record.
type Scheduler struct {
	scanner   *Scanner
	committer *Committer
	notifier  Notifier
	clock     clock.Clock
	cfg       SchedulerConfig

	mu           sync.Mutex
	running      bool
	runningSince time.Time
	lastRun      time.Time
}

// NewScheduler creates a new expiration scheduler.
// The notifier may be nil; the clock defaults to the real clock.
func NewScheduler(scanner *Scanner, committer *Committer, notifier Notifier, clk clock.Clock, cfg SchedulerConfig) *Scheduler {
	if scanner == nil {
		log.Fatal("Expiration Scheduler: scanner is nil")
	}
	if committer == nil {
		log.Fatal("Expiration Scheduler: committer is nil")
	}
	if cfg.Cooldown <= 0 {
		log.Fatal("Expiration Scheduler: cooldown must be positive")
	}
	if cfg.WatchdogTimeout <= 0 {
		log.Fatal("Expiration Scheduler: watchdog timeout must be positive")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		scanner:   scanner,
		committer: committer,
		notifier:  notifier,
		clock:     clk,
		cfg:       cfg,
	}
}

// RunIfDue runs the pipeline unless another run is in flight or the
// cooldown has not elapsed, in which case it returns a zero Result without
// touching the store. Safe to call on every page mount.
func (s *Scheduler) RunIfDue(ctx context.Context) (Result, error) {
	s.mu.Lock()
	now := s.clock.Now()

	if s.running {
		if now.Sub(s.runningSince) <= s.cfg.WatchdogTimeout {
			s.mu.Unlock()
			return Result{DowngradedAds: []DowngradedAd{}}, nil
		}
		// Stuck run: self-heal by resetting the guard, but make it visible
		// since it points at a real problem upstream.
		log.Printf("[ExpirationScheduler] Guard stuck in Running for %v (watchdog %v), force-resetting",
			now.Sub(s.runningSince), s.cfg.WatchdogTimeout)
		sentry.CaptureMessage("expiration guard force-reset by watchdog")
		s.running = false
	}

	if !s.lastRun.IsZero() && now.Sub(s.lastRun) < s.cfg.Cooldown {
		s.mu.Unlock()
		return Result{DowngradedAds: []DowngradedAd{}}, nil
	}

	s.running = true
	s.runningSince = now
	s.mu.Unlock()

	return s.run(ctx)
}

// RunImmediately bypasses the cooldown and the re-entrancy guard, forcing
// the guard to Idle first. Meant for operator "run now" actions. Forcing
// past an in-flight run is tolerated only because the committer's batch is
// atomic and re-running on a downgraded ad matches nothing.
func (s *Scheduler) RunImmediately(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.running {
		log.Printf("[ExpirationScheduler] Manual trigger while a run is in flight, forcing guard to Idle")
	}
	s.running = true
	s.runningSince = s.clock.Now()
	s.mu.Unlock()

	return s.run(ctx)
}

// run executes scan + commit. The guard is released on every path,
// including panics inside the scanner or committer.
func (s *Scheduler) run(ctx context.Context) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			result = Result{DowngradedAds: []DowngradedAd{}}
			err = fmt.Errorf("expiration run panicked: %v", r)
		}
		s.mu.Lock()
		s.running = false
		s.lastRun = s.clock.Now()
		s.mu.Unlock()
	}()

	candidates, err := s.scanner.Scan(ctx)
	if err != nil {
		log.Printf("[ExpirationScheduler] Scan failed: %v", err)
		sentry.CaptureException(err)
		return Result{DowngradedAds: []DowngradedAd{}}, err
	}

	result, err = s.committer.Commit(ctx, candidates)
	if err != nil {
		log.Printf("[ExpirationScheduler] Commit failed, %d ads skipped: %v", result.SkippedCount, err)
		sentry.CaptureException(err)
		return result, err
	}

	if result.ProcessedCount > 0 {
		log.Printf("[ExpirationScheduler] Downgraded %d expired ads", result.ProcessedCount)
		if s.notifier != nil {
			s.notifier.NotifyDowngradeRun(ctx, result)
		}
	}
	return result, nil
}

// StartPeriodic fires RunIfDue once after initialDelay and then on every
// repeatInterval until the context is cancelled or the returned stop
// function is called.
func (s *Scheduler) StartPeriodic(ctx context.Context, initialDelay, repeatInterval time.Duration) func() {
	stopCh := make(chan struct{})
	go func() {
		timer := s.clock.Timer(initialDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-timer.C:
		}
		s.runLogged(ctx, "periodic")

		ticker := s.clock.Ticker(repeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				s.runLogged(ctx, "periodic")
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stopCh) }) }
}

// StartAdminPoll fires RunIfDue on a shorter interval while an admin view
// is open. Subject to the same cooldown as every other trigger.
func (s *Scheduler) StartAdminPoll(ctx context.Context, interval time.Duration) func() {
	stopCh := make(chan struct{})
	go func() {
		s.runLogged(ctx, "admin-poll")

		ticker := s.clock.Ticker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				s.runLogged(ctx, "admin-poll")
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stopCh) }) }
}

func (s *Scheduler) runLogged(ctx context.Context, trigger string) {
	if _, err := s.RunIfDue(ctx); err != nil {
		log.Printf("[ExpirationScheduler Trigger:%s] Run failed: %v", trigger, err)
	}
}

// ResetGuard clears the guard and cooldown state. Debug and test hook;
// production callers should rely on the watchdog instead.
func (s *Scheduler) ResetGuard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.runningSince = time.Time{}
	s.lastRun = time.Time{}
}
