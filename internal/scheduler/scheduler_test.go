package scheduler

import (
	"context"
	"testing"
	"time"

	syncer "github.com/example/lexsync/internal/sync"
)

type fakeSyncer struct {
	online bool
	calls  int
	result syncer.Result
}

func (f *fakeSyncer) Online() bool { return f.online }

func (f *fakeSyncer) Sync(ctx context.Context, force bool) syncer.Result {
	f.calls++
	return f.result
}

func TestRunSyncSkipsWhileOffline(t *testing.T) {
	fake := &fakeSyncer{online: false}
	s := New(fake, time.Minute)

	s.runSync()
	if fake.calls != 0 {
		t.Errorf("sync calls = %d, want 0 while offline", fake.calls)
	}
}

func TestRunSyncCallsSyncerWhenOnline(t *testing.T) {
	fake := &fakeSyncer{online: true, result: syncer.Result{Success: true}}
	s := New(fake, time.Minute)

	s.runSync()
	if fake.calls != 1 {
		t.Errorf("sync calls = %d, want 1", fake.calls)
	}
}

func TestRunSyncToleratesInFlight(t *testing.T) {
	fake := &fakeSyncer{online: true, result: syncer.Result{Err: syncer.ErrSyncInFlight}}
	s := New(fake, time.Minute)

	// Must not panic or escalate; the next tick picks it up
	s.runSync()
	if fake.calls != 1 {
		t.Errorf("sync calls = %d, want 1", fake.calls)
	}
}

func TestDefaultInterval(t *testing.T) {
	s := New(&fakeSyncer{}, 0)
	if s.interval != DefaultSyncInterval {
		t.Errorf("interval = %v, want default %v", s.interval, DefaultSyncInterval)
	}
}
