package sync

import (
	"context"
	"errors"
	"log"
	stdsync "sync"
	"time"

	"github.com/example/lexsync/internal/database"
	"github.com/example/lexsync/pkg/models"
)

// Progress checkpoints reported to the UI while a sync runs
const (
	progressSnapshot  = 10
	progressProgress  = 30
	progressVocab     = 60
	progressExercises = 80
	progressStats     = 90
	progressDone      = 100
)

// Orchestrator reconciles the local progress store with the remote
// authority. All sync triggers (connectivity changes, the periodic timer,
// forced calls) funnel through Sync, and a guard flag keeps at most one sync
// in flight per user so overlapping snapshots never double-count.
type Orchestrator struct {
	store  *database.ProgressStore
	remote Authority
	userID string

	backoff       Backoff
	clock         Clock
	debounceDelay time.Duration

	mu             stdsync.Mutex
	syncing        bool
	online         bool
	conflicts      []Conflict
	debounceCancel context.CancelFunc
	onProgress     func(percent int)
}

// Result is the outcome of one sync call
type Result struct {
	Success     bool
	Conflicts   []Conflict
	SyncedItems int
	Err         error
}

// New creates an orchestrator for the given user with the default retry
// policy (three retries at 2s, 4s, 6s) and a one second debounce on
// online transitions.
func New(store *database.ProgressStore, remote Authority, userID string) *Orchestrator {
	return &Orchestrator{
		store:         store,
		remote:        remote,
		userID:        userID,
		backoff:       DefaultBackoff(),
		clock:         realClock{},
		debounceDelay: time.Second,
	}
}

// SetProgressFunc registers a callback for the discrete progress
// checkpoints (10/30/60/80/90/100) reported during a sync.
func (o *Orchestrator) SetProgressFunc(fn func(percent int)) {
	o.mu.Lock()
	o.onProgress = fn
	o.mu.Unlock()
}

// SetOnline records a connectivity change. Going online with local changes
// pending schedules a debounced sync; going offline cancels any scheduled
// one. The periodic timer is managed by the caller (internal/scheduler) and
// consults Online.
func (o *Orchestrator) SetOnline(online bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	wasOnline := o.online
	o.online = online

	if !online {
		o.cancelDebounceLocked()
		return
	}
	if wasOnline || o.debounceCancel != nil {
		return
	}
	if !o.store.PendingSync() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.debounceCancel = cancel
	go func() {
		defer cancel()
		// The wait goes through the injected clock so tests control it
		if err := o.clock.Sleep(ctx, o.debounceDelay); err != nil {
			return
		}
		o.mu.Lock()
		o.debounceCancel = nil
		o.mu.Unlock()

		result := o.Sync(context.Background(), false)
		if result.Err != nil && !errors.Is(result.Err, ErrSyncInFlight) {
			log.Printf("sync after reconnect failed for user %s: %v", o.userID, result.Err)
		}
	}()
}

// cancelDebounceLocked stops a scheduled debounced sync, if any.
// Must be called with the lock held.
func (o *Orchestrator) cancelDebounceLocked() {
	if o.debounceCancel != nil {
		o.debounceCancel()
		o.debounceCancel = nil
	}
}

// Online reports the last known connectivity state
func (o *Orchestrator) Online() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.online
}

// Conflicts returns the unresolved conflicts from the last sync
func (o *Orchestrator) Conflicts() []Conflict {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Conflict(nil), o.conflicts...)
}

// Close cancels any pending debounced sync
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelDebounceLocked()
}

// Sync reconciles local state with the remote authority. force syncs even
// when offline was last reported or no changes are pending. Fetch failures
// are retried per the backoff policy before being surfaced; conflicts are
// returned for manual resolution and leave the pending flag set. A sync
// already in flight returns ErrSyncInFlight and does nothing.
func (o *Orchestrator) Sync(ctx context.Context, force bool) Result {
	o.mu.Lock()
	if o.syncing {
		o.mu.Unlock()
		return Result{Err: ErrSyncInFlight}
	}
	if !o.online && !force {
		o.mu.Unlock()
		return Result{Err: ErrNoConnection}
	}
	o.syncing = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.syncing = false
		o.mu.Unlock()
	}()

	result := o.attempt(ctx, force)
	for retry := 1; result.Err != nil && retryable(result.Err) && retry <= o.backoff.MaxAttempts; retry++ {
		if err := o.clock.Sleep(ctx, o.backoff.Delay(retry)); err != nil {
			result.Err = err
			break
		}
		result = o.attempt(ctx, force)
	}

	if result.Err != nil {
		// Nothing is marked synced; local progress is kept for a later attempt
		return result
	}

	// The parked set always reflects the latest pass: a clean sync drops
	// conflicts whose divergence has healed in the meantime.
	o.mu.Lock()
	o.conflicts = result.Conflicts
	o.mu.Unlock()

	if len(result.Conflicts) > 0 {
		return result
	}

	o.store.MarkAsSynced()
	result.Success = true
	return result
}

// attempt runs one pass over all entity types in fixed order. A conflict on
// one entity blocks only that entity's upload; everything else proceeds.
func (o *Orchestrator) attempt(ctx context.Context, force bool) Result {
	snapshot := o.store.PendingSyncData()
	if snapshot == nil {
		if !force {
			// Nothing changed since the last sync: a clean no-op
			o.report(progressDone)
			return Result{Success: true}
		}
		snapshot = o.store.Snapshot()
	}
	o.report(progressSnapshot)

	var conflicts []Conflict
	synced := 0

	// Learning progress: scalar compare, one conflict per diverging field
	serverProgress, err := o.remote.FetchLearningProgress(ctx, o.userID)
	if err != nil {
		return Result{Err: &FetchError{Entity: "learning_progress", Err: err}}
	}
	if serverProgress != nil {
		if snapshot.LearningProgress.StoriesRead != serverProgress.StoriesRead {
			conflicts = append(conflicts, LearningProgressConflict{
				FieldName: "stories_read",
				Local:     snapshot.LearningProgress,
				Server:    *serverProgress,
			})
		}
		if snapshot.LearningProgress.VocabularyLearned != serverProgress.VocabularyLearned {
			conflicts = append(conflicts, LearningProgressConflict{
				FieldName: "vocabulary_learned",
				Local:     snapshot.LearningProgress,
				Server:    *serverProgress,
			})
		}
	}
	if len(conflicts) == 0 {
		if err := o.remote.UploadLearningProgress(ctx, o.userID, snapshot.LearningProgress); err != nil {
			return Result{Err: &FetchError{Entity: "learning_progress", Err: err}}
		}
		synced++
	}
	o.report(progressProgress)

	// Vocabulary: automatic max-wins merge, never conflicts
	serverVocab, err := o.remote.FetchVocabulary(ctx, o.userID)
	if err != nil {
		return Result{Err: &FetchError{Entity: "vocabulary_progress", Err: err}}
	}
	merged := mergeVocabularyLists(snapshot.Vocabulary, serverVocab)
	if len(merged) > 0 {
		if err := o.remote.UploadVocabulary(ctx, o.userID, merged); err != nil {
			return Result{Err: &FetchError{Entity: "vocabulary_progress", Err: err}}
		}
		o.store.ApplyVocabulary(merged)
		synced += len(merged)
	}
	o.report(progressVocab)

	// Exercise results: append-only, always uploaded
	if len(snapshot.ExerciseResults) > 0 {
		if err := o.remote.UploadExerciseResults(ctx, o.userID, snapshot.ExerciseResults); err != nil {
			return Result{Err: &FetchError{Entity: "exercise_results", Err: err}}
		}
		synced += len(snapshot.ExerciseResults)
	}
	o.report(progressExercises)

	// Statistics: per-field automatic merge
	serverStats, err := o.remote.FetchLearningStats(ctx, o.userID)
	if err != nil {
		return Result{Err: &FetchError{Entity: "learning_stats", Err: err}}
	}
	mergedStats := snapshot.LearningStats
	if serverStats != nil {
		mergedStats = mergeStats(snapshot.LearningStats, *serverStats)
	}
	if err := o.remote.UploadLearningStats(ctx, o.userID, mergedStats); err != nil {
		return Result{Err: &FetchError{Entity: "learning_stats", Err: err}}
	}
	o.store.SetLearningStats(mergedStats)
	synced++
	o.report(progressStats)

	// Sessions: append-only log
	if len(snapshot.Sessions) > 0 {
		if err := o.remote.UploadSessions(ctx, o.userID, snapshot.Sessions); err != nil {
			return Result{Err: &FetchError{Entity: "sessions", Err: err}}
		}
		synced += len(snapshot.Sessions)
	}
	o.report(progressDone)

	return Result{Conflicts: conflicts, SyncedItems: synced}
}

// Resolve applies the caller's decisions to the outstanding conflicts,
// uploads the resolved values and marks the store synced. Conflicts without
// an entry in resolutions fall back to merge. Resolving twice is harmless:
// the second call finds an empty conflict set and does nothing. Resolve
// shares the single-flight guard with Sync so its uploads never interleave
// with a running sync.
func (o *Orchestrator) Resolve(ctx context.Context, resolutions map[Key]Resolution) error {
	o.mu.Lock()
	if o.syncing {
		o.mu.Unlock()
		return ErrSyncInFlight
	}
	conflicts := o.conflicts
	if len(conflicts) == 0 {
		o.mu.Unlock()
		return nil
	}
	o.syncing = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.syncing = false
		o.mu.Unlock()
	}()

	progress := o.store.LearningProgress()
	stats := o.store.LearningStats()
	var vocabulary []models.VocabularyProgress
	uploadProgress := false
	uploadStats := false

	for _, c := range conflicts {
		resolution, ok := resolutions[Key{Entity: c.Entity(), Field: c.Field()}]
		if !ok {
			resolution = ResolveMerge
		}

		switch cc := c.(type) {
		case LearningProgressConflict:
			switch resolution {
			case ResolveServer:
				progress = applyServerLearningProgressField(cc.FieldName, progress, cc.Server)
			case ResolveMerge:
				progress = mergeLearningProgressField(cc.FieldName, progress, cc.Server)
			}
			uploadProgress = true

		case VocabularyConflict:
			resolved := cc.Local
			switch resolution {
			case ResolveServer:
				resolved = cc.Server
			case ResolveMerge:
				resolved = mergeVocabulary(cc.Local, cc.Server)
			}
			vocabulary = append(vocabulary, resolved)

		case StatsConflict:
			switch resolution {
			case ResolveServer:
				stats = cc.Server
			case ResolveMerge:
				stats = mergeStats(stats, cc.Server)
			}
			uploadStats = true

		case ExerciseResultConflict:
			// Append-only log: nothing to reconcile
		}
	}

	if uploadProgress {
		o.store.SetLearningProgress(progress)
		if err := o.remote.UploadLearningProgress(ctx, o.userID, progress); err != nil {
			return &FetchError{Entity: "learning_progress", Err: err}
		}
	}
	if len(vocabulary) > 0 {
		o.store.ApplyVocabulary(vocabulary)
		if err := o.remote.UploadVocabulary(ctx, o.userID, o.store.Vocabulary()); err != nil {
			return &FetchError{Entity: "vocabulary_progress", Err: err}
		}
	}
	if uploadStats {
		o.store.SetLearningStats(stats)
		if err := o.remote.UploadLearningStats(ctx, o.userID, stats); err != nil {
			return &FetchError{Entity: "learning_stats", Err: err}
		}
	}

	o.mu.Lock()
	o.conflicts = nil
	o.mu.Unlock()
	o.store.MarkAsSynced()
	return nil
}

func (o *Orchestrator) report(percent int) {
	o.mu.Lock()
	fn := o.onProgress
	o.mu.Unlock()
	if fn != nil {
		fn(percent)
	}
}

func retryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// mergeVocabularyLists merges the server's entries into the local list:
// shared words merge max-wins, local-only words upload as-is, server-only
// words are adopted locally. The result keeps the local sort order by word.
func mergeVocabularyLists(local, server []models.VocabularyProgress) []models.VocabularyProgress {
	serverByWord := make(map[string]models.VocabularyProgress, len(server))
	for _, v := range server {
		serverByWord[v.Word] = v
	}

	merged := make([]models.VocabularyProgress, 0, len(local)+len(server))
	seen := make(map[string]bool, len(local))
	for _, lv := range local {
		seen[lv.Word] = true
		if sv, ok := serverByWord[lv.Word]; ok {
			merged = append(merged, mergeVocabulary(lv, sv))
		} else {
			merged = append(merged, lv)
		}
	}
	for _, sv := range server {
		if !seen[sv.Word] {
			merged = append(merged, sv)
		}
	}
	return merged
}
