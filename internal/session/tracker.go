package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/lexsync/internal/database"
	"github.com/example/lexsync/internal/spaced_repetition"
	"github.com/example/lexsync/pkg/models"
)

// Tracker bounds one active learning session per user and flushes its
// results into the progress store when the session ends.
//
// Starting a session while another is active ends the previous one first:
// losing a few seconds of attributed time beats rejecting the new session
// and stalling the caller.
type Tracker struct {
	store  *database.ProgressStore
	active *models.LearningSession
	now    func() time.Time
}

// NewTracker creates a tracker bound to the given store
func NewTracker(store *database.ProgressStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Start begins a new session for the given story. If a session is already
// active it is ended and flushed before the new one starts.
func (t *Tracker) Start(storyID string) *models.LearningSession {
	if t.active != nil {
		t.End(false)
	}

	t.active = &models.LearningSession{
		ID:        uuid.NewString(),
		StoryID:   storyID,
		StartTime: t.now(),
	}
	return t.active
}

// Active returns the current session, or nil when idle
func (t *Tracker) Active() *models.LearningSession {
	return t.active
}

// RecordWord notes an encounter with a word during the active session.
// The vocabulary entry's encounter counter advances immediately so the
// progress survives even if the session never ends cleanly.
func (t *Tracker) RecordWord(word string) error {
	if t.active == nil {
		return fmt.Errorf("no active session")
	}

	t.active.WordsEncountered = append(t.active.WordsEncountered, word)

	encounters := 1
	if v, ok := t.store.VocabularyEntry(word); ok {
		encounters = v.Encounters + 1
	}
	t.store.UpdateVocabularyProgress(word, models.VocabularyProgressPatch{Encounters: &encounters})
	return nil
}

// RecordExercise records an exercise result during the active session.
// The result goes straight into the store's append-only log.
func (t *Tracker) RecordExercise(result models.ExerciseResult) error {
	if t.active == nil {
		return fmt.Errorf("no active session")
	}

	t.active.ExercisesCompleted = append(t.active.ExercisesCompleted, result.ExerciseID)
	t.store.AddExerciseResult(result)
	return nil
}

// RecordReview applies a review outcome to a vocabulary word: the schedule
// advances, mastery and status are recomputed and the counters move. Reviews
// are valid outside a session too; when one is active the word is also
// attributed to it.
func (t *Tracker) RecordReview(word string, result spaced_repetition.ReviewResult) models.VocabularyProgress {
	now := t.now()

	state := spaced_repetition.ReviewState{EaseFactor: 2.5, Interval: 1}
	if v, ok := t.store.VocabularyEntry(word); ok {
		state = spaced_repetition.ReviewState{
			EaseFactor:  v.EaseFactor,
			Interval:    v.Interval,
			Repetitions: v.Repetitions,
		}
	}

	next, nextReview := spaced_repetition.Review(state, result, now)
	mastery := spaced_repetition.Mastery(next, result.Quality)
	status := spaced_repetition.Status(next.Repetitions, mastery)

	encounters, correct, attempts := 1, 0, 1
	if v, ok := t.store.VocabularyEntry(word); ok {
		encounters = v.Encounters + 1
		correct = v.CorrectAnswers
		attempts = v.TotalAttempts + 1
	}
	if result.IsCorrect {
		correct++
	}

	t.store.UpdateVocabularyProgress(word, models.VocabularyProgressPatch{
		Status:         &status,
		Encounters:     &encounters,
		CorrectAnswers: &correct,
		TotalAttempts:  &attempts,
		LastReviewed:   &now,
		NextReview:     &nextReview,
		MasteryLevel:   &mastery,
		EaseFactor:     &next.EaseFactor,
		Interval:       &next.Interval,
		Repetitions:    &next.Repetitions,
	})

	if t.active != nil {
		t.active.WordsEncountered = append(t.active.WordsEncountered, word)
	}

	v, _ := t.store.VocabularyEntry(word)
	return v
}

// End closes the active session, attributes the elapsed time to the
// learning progress aggregate and appends the session to the persistent
// log. Ending while idle is a no-op.
func (t *Tracker) End(completed bool) *models.LearningSession {
	if t.active == nil {
		return nil
	}

	now := t.now()
	s := t.active
	t.active = nil

	s.EndTime = &now
	s.TimeSpent = int(now.Sub(s.StartTime).Seconds())
	s.Completed = completed

	progress := t.store.LearningProgress()
	previousActivity := progress.LastActivityAt
	minutes := s.TimeSpent / 60
	total := progress.TotalTimeSpent + minutes
	t.store.UpdateLearningProgress(models.LearningProgressPatch{
		TotalTimeSpent: &total,
		LastActivityAt: &now,
	})

	t.store.AppendSession(*s)
	t.accumulateTime(previousActivity, now, minutes)
	t.refreshStats()

	return s
}

// accumulateTime rolls a finished session's minutes into the daily and
// weekly counters. Each counter resets when its period rolled over since
// the previous activity.
func (t *Tracker) accumulateTime(lastActivity, now time.Time, minutes int) {
	stats := t.store.LearningStats()

	today := stats.TimeSpentToday
	if !sameDay(lastActivity, now) {
		today = 0
	}
	week := stats.TimeSpentWeek
	if !sameWeek(lastActivity, now) {
		week = 0
	}
	today += minutes
	week += minutes

	t.store.UpdateLearningStats(models.LearningStatsPatch{
		TimeSpentToday: &today,
		TimeSpentWeek:  &week,
	})
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func sameWeek(a, b time.Time) bool {
	y1, w1 := a.ISOWeek()
	y2, w2 := b.ISOWeek()
	return y1 == y2 && w1 == w2
}

// refreshStats recomputes the derived statistics that follow directly from
// the vocabulary map and exercise log.
func (t *Tracker) refreshStats() {
	snap := t.store.Snapshot()

	mastered := 0
	for _, v := range snap.Vocabulary {
		if v.Status == models.VocabularyMastered {
			mastered++
		}
	}
	var completionRate float64
	if len(snap.Vocabulary) > 0 {
		completionRate = float64(mastered) / float64(len(snap.Vocabulary)) * 100
	}

	var avg float64
	if len(snap.ExerciseResults) > 0 {
		correct := 0
		for _, r := range snap.ExerciseResults {
			if r.IsCorrect {
				correct++
			}
		}
		avg = float64(correct) / float64(len(snap.ExerciseResults)) * 100
	} else {
		avg = snap.LearningStats.AverageScore
	}

	total := snap.LearningProgress.TotalTimeSpent
	t.store.UpdateLearningStats(models.LearningStatsPatch{
		VocabularyMastered: &mastered,
		AverageScore:       &avg,
		TimeSpentTotal:     &total,
		CompletionRate:     &completionRate,
	})
}
