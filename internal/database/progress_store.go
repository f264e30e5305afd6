package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/lexsync/pkg/models"
)

// ProgressStore is the single writer of local learning state for one user.
// All reads and writes go through it; mutations mark the state as pending
// sync and write the whole user record back to the database in one statement,
// so persisted state is never torn.
//
// Durable writes are best-effort: if the database write fails the error is
// logged as a warning and the in-memory state still advances. Accumulated
// progress is never discarded and callers are never blocked on storage.
type ProgressStore struct {
	db     *sqlx.DB // nil keeps state in memory only
	userID string

	mu           sync.Mutex
	progress     models.LearningProgress
	vocabulary   map[string]models.VocabularyProgress
	results      []models.ExerciseResult
	stats        models.LearningStats
	sessions     []models.LearningSession
	lastSyncTime time.Time
	pendingSync  bool

	now func() time.Time
}

// SyncSnapshot is a consistent copy of everything that needs to reach the
// remote authority. Returned by PendingSyncData.
type SyncSnapshot struct {
	LearningProgress models.LearningProgress
	Vocabulary       []models.VocabularyProgress
	ExerciseResults  []models.ExerciseResult
	LearningStats    models.LearningStats
	Sessions         []models.LearningSession
}

// userStateRow mirrors one row of the user_state table
type userStateRow struct {
	UserID             string       `db:"user_id"`
	LearningProgress   string       `db:"learning_progress"`
	VocabularyProgress string       `db:"vocabulary_progress"`
	ExerciseResults    string       `db:"exercise_results"`
	LearningStats      string       `db:"learning_stats"`
	LastSyncTime       sql.NullTime `db:"last_sync_time"`
	PendingSync        bool         `db:"pending_sync"`
	UpdatedAt          sql.NullTime `db:"updated_at"`
}

// NewProgressStore loads the persisted record for the given user, or starts
// from empty state if none exists yet. A nil db keeps the store in memory
// only, which is useful for tests and throwaway profiles.
func NewProgressStore(db *sqlx.DB, userID string) (*ProgressStore, error) {
	s := &ProgressStore{
		db:         db,
		userID:     userID,
		vocabulary: make(map[string]models.VocabularyProgress),
		now:        time.Now,
	}
	if db == nil {
		return s, nil
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateLearningProgress applies a partial update to the learning progress
// aggregate and marks the state as pending sync.
func (s *ProgressStore) UpdateLearningProgress(patch models.LearningProgressPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &s.progress
	if patch.StoriesRead != nil {
		p.StoriesRead = *patch.StoriesRead
	}
	if patch.VocabularyLearned != nil {
		p.VocabularyLearned = *patch.VocabularyLearned
	}
	if patch.TotalTimeSpent != nil {
		p.TotalTimeSpent = *patch.TotalTimeSpent
	}
	if patch.CurrentStreak != nil {
		p.CurrentStreak = *patch.CurrentStreak
	}
	if patch.LongestStreak != nil {
		p.LongestStreak = *patch.LongestStreak
	}
	if patch.CompletionPercentage != nil {
		p.CompletionPercentage = *patch.CompletionPercentage
	}
	if patch.Level != nil {
		p.Level = *patch.Level
	}
	if patch.ExperiencePoints != nil {
		p.ExperiencePoints = *patch.ExperiencePoints
	}
	if patch.Achievements != nil {
		p.Achievements = append([]string(nil), patch.Achievements...)
	}
	if patch.LastActivityAt != nil {
		p.LastActivityAt = *patch.LastActivityAt
	}

	s.markDirtyAndPersist()
}

// UpdateVocabularyProgress applies a partial update to the entry for word,
// creating it with defaults when the word is not tracked yet: status new,
// next review in 24 hours, mastery zero.
func (s *ProgressStore) UpdateVocabularyProgress(word string, patch models.VocabularyProgressPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vocabulary[word]
	if !ok {
		v = models.VocabularyProgress{
			Word:       word,
			Status:     models.VocabularyNew,
			NextReview: s.now().Add(24 * time.Hour),
			EaseFactor: 2.5,
		}
	}

	if patch.Status != nil {
		v.Status = *patch.Status
	}
	if patch.Encounters != nil {
		v.Encounters = *patch.Encounters
	}
	if patch.CorrectAnswers != nil {
		v.CorrectAnswers = *patch.CorrectAnswers
	}
	if patch.TotalAttempts != nil {
		v.TotalAttempts = *patch.TotalAttempts
	}
	if patch.LastReviewed != nil {
		v.LastReviewed = *patch.LastReviewed
	}
	if patch.NextReview != nil {
		v.NextReview = *patch.NextReview
	}
	if patch.MasteryLevel != nil {
		m := *patch.MasteryLevel
		if m < 0 {
			m = 0
		}
		if m > 100 {
			m = 100
		}
		v.MasteryLevel = m
	}
	if patch.EaseFactor != nil {
		v.EaseFactor = *patch.EaseFactor
	}
	if patch.Interval != nil {
		v.Interval = *patch.Interval
	}
	if patch.Repetitions != nil {
		v.Repetitions = *patch.Repetitions
	}
	if v.NextReview.Before(v.LastReviewed) {
		v.NextReview = v.LastReviewed
	}

	s.vocabulary[word] = v
	s.markDirtyAndPersist()
}

// AddExerciseResult appends a result to the exercise log. When the result
// maps to a tracked vocabulary word, the word's counters advance with it.
func (s *ProgressStore) AddExerciseResult(result models.ExerciseResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result.RecordedAt.IsZero() {
		result.RecordedAt = s.now()
	}
	s.results = append(s.results, result)

	if word, ok := s.trackedWord(result); ok {
		v := s.vocabulary[word]
		v.Encounters++
		attempts := result.Attempts
		if attempts < 1 {
			attempts = 1
		}
		v.TotalAttempts += attempts
		if result.IsCorrect {
			v.CorrectAnswers++
		}
		v.LastReviewed = result.RecordedAt
		if v.NextReview.Before(v.LastReviewed) {
			v.NextReview = v.LastReviewed
		}
		s.vocabulary[word] = v
	}

	s.markDirtyAndPersist()
}

// trackedWord resolves an exercise result to a vocabulary key. The explicit
// Word field wins; otherwise the user's answer is matched against tracked
// words. Must be called with the lock held.
func (s *ProgressStore) trackedWord(result models.ExerciseResult) (string, bool) {
	if result.Word != "" {
		if _, ok := s.vocabulary[result.Word]; ok {
			return result.Word, true
		}
		return "", false
	}
	answer := strings.ToLower(strings.TrimSpace(result.UserAnswer))
	if _, ok := s.vocabulary[answer]; ok {
		return answer, true
	}
	return "", false
}

// UpdateLearningStats applies a partial update to the derived statistics
func (s *ProgressStore) UpdateLearningStats(patch models.LearningStatsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.stats
	if patch.StoriesCompleted != nil {
		st.StoriesCompleted = *patch.StoriesCompleted
	}
	if patch.VocabularyMastered != nil {
		st.VocabularyMastered = *patch.VocabularyMastered
	}
	if patch.TimeSpentToday != nil {
		st.TimeSpentToday = *patch.TimeSpentToday
	}
	if patch.TimeSpentWeek != nil {
		st.TimeSpentWeek = *patch.TimeSpentWeek
	}
	if patch.TimeSpentTotal != nil {
		st.TimeSpentTotal = *patch.TimeSpentTotal
	}
	if patch.CurrentStreak != nil {
		st.CurrentStreak = *patch.CurrentStreak
	}
	if patch.LongestStreak != nil {
		st.LongestStreak = *patch.LongestStreak
	}
	if patch.AverageScore != nil {
		st.AverageScore = *patch.AverageScore
	}
	if patch.CompletionRate != nil {
		st.CompletionRate = *patch.CompletionRate
	}

	s.markDirtyAndPersist()
}

// AppendSession adds a finished session to the persistent session log.
// The log survives restarts and is cleared only by MarkAsSynced.
func (s *ProgressStore) AppendSession(session models.LearningSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append(s.sessions, session)
	s.markDirtyAndPersist()
}

// PendingSyncData returns a snapshot of everything awaiting sync, or nil if
// nothing changed since the last successful sync.
func (s *ProgressStore) PendingSyncData() *SyncSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.pendingSync {
		return nil
	}
	return s.snapshotLocked()
}

// Snapshot returns a copy of the current state regardless of the pending flag
func (s *ProgressStore) Snapshot() *SyncSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ProgressStore) snapshotLocked() *SyncSnapshot {
	vocab := make([]models.VocabularyProgress, 0, len(s.vocabulary))
	for _, v := range s.vocabulary {
		vocab = append(vocab, v)
	}
	sort.Slice(vocab, func(i, j int) bool { return vocab[i].Word < vocab[j].Word })

	return &SyncSnapshot{
		LearningProgress: s.progress,
		Vocabulary:       vocab,
		ExerciseResults:  append([]models.ExerciseResult(nil), s.results...),
		LearningStats:    s.stats,
		Sessions:         append([]models.LearningSession(nil), s.sessions...),
	}
}

// MarkAsSynced records a successful sync: the pending flag drops, the sync
// time advances and the uploaded session log is cleared.
func (s *ProgressStore) MarkAsSynced() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSyncTime = s.now()
	s.pendingSync = false
	s.sessions = nil
	s.persist()
}

// SetLearningProgress overwrites the local aggregate. Used when a conflict
// is resolved in the server's favor or a merge produced a combined value.
func (s *ProgressStore) SetLearningProgress(p models.LearningProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = p
	s.persist()
}

// ApplyVocabulary writes merged vocabulary entries back into the store
func (s *ProgressStore) ApplyVocabulary(entries []models.VocabularyProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range entries {
		s.vocabulary[v.Word] = v
	}
	s.persist()
}

// SetLearningStats overwrites the local statistics with a merged value
func (s *ProgressStore) SetLearningStats(st models.LearningStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats = st
	s.persist()
}

// LearningProgress returns a copy of the current aggregate
func (s *ProgressStore) LearningProgress() models.LearningProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Vocabulary returns a copy of all tracked vocabulary entries sorted by word
func (s *ProgressStore) Vocabulary() []models.VocabularyProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	vocab := make([]models.VocabularyProgress, 0, len(s.vocabulary))
	for _, v := range s.vocabulary {
		vocab = append(vocab, v)
	}
	sort.Slice(vocab, func(i, j int) bool { return vocab[i].Word < vocab[j].Word })
	return vocab
}

// VocabularyEntry returns the entry for word, if tracked
func (s *ProgressStore) VocabularyEntry(word string) (models.VocabularyProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vocabulary[word]
	return v, ok
}

// LearningStats returns a copy of the derived statistics
func (s *ProgressStore) LearningStats() models.LearningStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// PendingSync reports whether any entity mutated since the last sync
func (s *ProgressStore) PendingSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingSync
}

// LastSyncTime returns the time of the last successful sync, zero if never
func (s *ProgressStore) LastSyncTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSyncTime
}

// markDirtyAndPersist flags pending changes and writes the record through.
// Must be called with the lock held.
func (s *ProgressStore) markDirtyAndPersist() {
	s.pendingSync = true
	s.persist()
}

// persist writes the whole user record and session log back to the database.
// Failures are logged as warnings; the in-memory state has already advanced
// and will be written again on the next mutation.
func (s *ProgressStore) persist() {
	if s.db == nil {
		return
	}

	progressJSON, err := json.Marshal(s.progress)
	if err != nil {
		log.Printf("warning: failed to encode learning progress for user %s: %v", s.userID, err)
		return
	}
	vocabJSON, err := json.Marshal(s.vocabulary)
	if err != nil {
		log.Printf("warning: failed to encode vocabulary for user %s: %v", s.userID, err)
		return
	}
	resultsJSON, err := json.Marshal(s.results)
	if err != nil {
		log.Printf("warning: failed to encode exercise results for user %s: %v", s.userID, err)
		return
	}
	statsJSON, err := json.Marshal(s.stats)
	if err != nil {
		log.Printf("warning: failed to encode learning stats for user %s: %v", s.userID, err)
		return
	}
	sessionsJSON, err := json.Marshal(s.sessions)
	if err != nil {
		log.Printf("warning: failed to encode session log for user %s: %v", s.userID, err)
		return
	}

	var lastSync interface{}
	if !s.lastSyncTime.IsZero() {
		lastSync = s.lastSyncTime
	}

	_, err = s.db.Exec(`
		INSERT INTO user_state (
			user_id, learning_progress, vocabulary_progress, exercise_results,
			learning_stats, last_sync_time, pending_sync, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			learning_progress = EXCLUDED.learning_progress,
			vocabulary_progress = EXCLUDED.vocabulary_progress,
			exercise_results = EXCLUDED.exercise_results,
			learning_stats = EXCLUDED.learning_stats,
			last_sync_time = EXCLUDED.last_sync_time,
			pending_sync = EXCLUDED.pending_sync,
			updated_at = CURRENT_TIMESTAMP
	`, s.userID, string(progressJSON), string(vocabJSON), string(resultsJSON),
		string(statsJSON), lastSync, s.pendingSync)
	if err != nil {
		log.Printf("warning: failed to persist state for user %s: %v", s.userID, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO session_log (user_id, sessions, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			sessions = EXCLUDED.sessions,
			updated_at = CURRENT_TIMESTAMP
	`, s.userID, string(sessionsJSON))
	if err != nil {
		log.Printf("warning: failed to persist session log for user %s: %v", s.userID, err)
	}
}

// load reads the persisted record for this user, if any
func (s *ProgressStore) load() error {
	var row userStateRow
	err := s.db.Get(&row, "SELECT * FROM user_state WHERE user_id = $1", s.userID)
	if err == sql.ErrNoRows {
		return s.loadSessions()
	}
	if err != nil {
		return fmt.Errorf("failed to load state for user %s: %v", s.userID, err)
	}

	if err := json.Unmarshal([]byte(row.LearningProgress), &s.progress); err != nil {
		return fmt.Errorf("failed to decode learning progress: %v", err)
	}
	if err := json.Unmarshal([]byte(row.VocabularyProgress), &s.vocabulary); err != nil {
		return fmt.Errorf("failed to decode vocabulary: %v", err)
	}
	if err := json.Unmarshal([]byte(row.ExerciseResults), &s.results); err != nil {
		return fmt.Errorf("failed to decode exercise results: %v", err)
	}
	if err := json.Unmarshal([]byte(row.LearningStats), &s.stats); err != nil {
		return fmt.Errorf("failed to decode learning stats: %v", err)
	}
	if row.LastSyncTime.Valid {
		s.lastSyncTime = row.LastSyncTime.Time
	}
	s.pendingSync = row.PendingSync
	if s.vocabulary == nil {
		s.vocabulary = make(map[string]models.VocabularyProgress)
	}

	return s.loadSessions()
}

func (s *ProgressStore) loadSessions() error {
	var sessionsJSON string
	err := s.db.Get(&sessionsJSON, "SELECT sessions FROM session_log WHERE user_id = $1", s.userID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session log for user %s: %v", s.userID, err)
	}
	if err := json.Unmarshal([]byte(sessionsJSON), &s.sessions); err != nil {
		return fmt.Errorf("failed to decode session log: %v", err)
	}
	return nil
}
