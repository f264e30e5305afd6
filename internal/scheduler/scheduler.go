package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	syncer "github.com/example/lexsync/internal/sync"
)

// DefaultSyncInterval is how often the periodic sync fires while online
const DefaultSyncInterval = 5 * time.Minute

// Syncer is the part of the sync orchestrator the scheduler drives.
// Satisfied by *sync.Orchestrator.
type Syncer interface {
	Online() bool
	Sync(ctx context.Context, force bool) syncer.Result
}

// Scheduler runs the periodic background sync
type Scheduler struct {
	scheduler *gocron.Scheduler
	syncer    Syncer
	interval  time.Duration
}

// New creates a scheduler that syncs at the given interval.
// A non-positive interval falls back to the default five minutes.
func New(s Syncer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		syncer:    s,
		interval:  interval,
	}
}

// Start begins the periodic sync job in the background
func (s *Scheduler) Start() {
	s.scheduler.Every(s.interval).Do(s.runSync)
	s.scheduler.StartAsync()
}

// Stop tears down the periodic timer
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// runSync performs one background sync pass. Offline periods and an
// already-running sync are normal here, not failures.
func (s *Scheduler) runSync() {
	if !s.syncer.Online() {
		return
	}

	result := s.syncer.Sync(context.Background(), false)
	switch {
	case errors.Is(result.Err, syncer.ErrSyncInFlight), errors.Is(result.Err, syncer.ErrNoConnection):
		// Skip quietly; the next tick or trigger will pick it up
	case result.Err != nil:
		log.Printf("periodic sync failed: %v", result.Err)
	case len(result.Conflicts) > 0:
		log.Printf("periodic sync found %d conflicts awaiting resolution", len(result.Conflicts))
	}
}
