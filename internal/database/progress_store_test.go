package database

import (
	"testing"
	"time"

	"github.com/example/lexsync/pkg/models"
)

func newTestStore(t *testing.T) *ProgressStore {
	t.Helper()
	s, err := NewProgressStore(nil, "test-user")
	if err != nil {
		t.Fatalf("NewProgressStore: %v", err)
	}
	return s
}

func intPtr(v int) *int { return &v }

func TestPendingSyncLifecycle(t *testing.T) {
	s := newTestStore(t)

	if s.PendingSync() {
		t.Fatal("fresh store should not be pending sync")
	}
	if s.PendingSyncData() != nil {
		t.Fatal("fresh store should have no pending data")
	}

	s.UpdateLearningProgress(models.LearningProgressPatch{StoriesRead: intPtr(3)})

	if !s.PendingSync() {
		t.Fatal("mutation should mark the store pending sync")
	}
	snap := s.PendingSyncData()
	if snap == nil {
		t.Fatal("pending data should be available after a mutation")
	}
	if snap.LearningProgress.StoriesRead != 3 {
		t.Errorf("stories read = %d, want 3", snap.LearningProgress.StoriesRead)
	}

	s.MarkAsSynced()
	if s.PendingSync() {
		t.Error("MarkAsSynced should clear the pending flag")
	}
	if s.PendingSyncData() != nil {
		t.Error("no pending data expected after MarkAsSynced")
	}
	if s.LastSyncTime().IsZero() {
		t.Error("MarkAsSynced should record the sync time")
	}
}

func TestVocabularyUpsertDefaults(t *testing.T) {
	s := newTestStore(t)
	before := time.Now()

	s.UpdateVocabularyProgress("lumikko", models.VocabularyProgressPatch{Encounters: intPtr(1)})

	v, ok := s.VocabularyEntry("lumikko")
	if !ok {
		t.Fatal("word should be tracked after upsert")
	}
	if v.Status != models.VocabularyNew {
		t.Errorf("status = %q, want new", v.Status)
	}
	if v.MasteryLevel != 0 {
		t.Errorf("mastery = %d, want 0", v.MasteryLevel)
	}
	if v.Encounters != 1 {
		t.Errorf("encounters = %d, want 1", v.Encounters)
	}
	// Default next review lands about a day out
	if v.NextReview.Before(before.Add(23*time.Hour)) || v.NextReview.After(before.Add(25*time.Hour)) {
		t.Errorf("next review = %v, want roughly 24h from now", v.NextReview)
	}
}

func TestVocabularyMasteryClamped(t *testing.T) {
	s := newTestStore(t)

	s.UpdateVocabularyProgress("yli", models.VocabularyProgressPatch{MasteryLevel: intPtr(250)})
	if v, _ := s.VocabularyEntry("yli"); v.MasteryLevel != 100 {
		t.Errorf("mastery = %d, want clamped to 100", v.MasteryLevel)
	}

	s.UpdateVocabularyProgress("ali", models.VocabularyProgressPatch{MasteryLevel: intPtr(-5)})
	if v, _ := s.VocabularyEntry("ali"); v.MasteryLevel != 0 {
		t.Errorf("mastery = %d, want clamped to 0", v.MasteryLevel)
	}
}

func TestExerciseResultCascade(t *testing.T) {
	s := newTestStore(t)
	s.UpdateVocabularyProgress("kirja", models.VocabularyProgressPatch{})

	s.AddExerciseResult(models.ExerciseResult{
		ExerciseID: "ex-1",
		Word:       "kirja",
		UserAnswer: "kirja",
		IsCorrect:  true,
		Attempts:   2,
	})

	v, _ := s.VocabularyEntry("kirja")
	if v.Encounters != 1 {
		t.Errorf("encounters = %d, want 1", v.Encounters)
	}
	if v.TotalAttempts != 2 {
		t.Errorf("total attempts = %d, want 2", v.TotalAttempts)
	}
	if v.CorrectAnswers != 1 {
		t.Errorf("correct answers = %d, want 1", v.CorrectAnswers)
	}
	if v.LastReviewed.IsZero() {
		t.Error("last reviewed should be set by the cascade")
	}

	snap := s.PendingSyncData()
	if len(snap.ExerciseResults) != 1 {
		t.Fatalf("exercise log length = %d, want 1", len(snap.ExerciseResults))
	}
}

func TestExerciseResultAnswerMatching(t *testing.T) {
	s := newTestStore(t)
	s.UpdateVocabularyProgress("talo", models.VocabularyProgressPatch{})

	// No explicit word: the answer itself maps to the tracked entry
	s.AddExerciseResult(models.ExerciseResult{
		ExerciseID: "ex-2",
		UserAnswer: "  Talo ",
		IsCorrect:  false,
	})

	v, _ := s.VocabularyEntry("talo")
	if v.Encounters != 1 {
		t.Errorf("encounters = %d, want 1", v.Encounters)
	}
	if v.CorrectAnswers != 0 {
		t.Errorf("correct answers = %d, want 0", v.CorrectAnswers)
	}
	if v.TotalAttempts != 1 {
		t.Errorf("total attempts = %d, want attempts floored to 1", v.TotalAttempts)
	}

	// An answer for an untracked word only extends the log
	s.AddExerciseResult(models.ExerciseResult{ExerciseID: "ex-3", UserAnswer: "vieras"})
	if _, ok := s.VocabularyEntry("vieras"); ok {
		t.Error("untracked answer should not create a vocabulary entry")
	}
}

func TestSessionLogClearedOnlyBySync(t *testing.T) {
	s := newTestStore(t)

	end := time.Now()
	s.AppendSession(models.LearningSession{ID: "s1", StoryID: "story-1", EndTime: &end, Completed: true})

	snap := s.PendingSyncData()
	if snap == nil || len(snap.Sessions) != 1 {
		t.Fatal("session should appear in the pending snapshot")
	}

	// Another mutation keeps the log intact
	s.UpdateLearningStats(models.LearningStatsPatch{TimeSpentToday: intPtr(10)})
	if snap = s.PendingSyncData(); len(snap.Sessions) != 1 {
		t.Fatal("session log should survive unrelated mutations")
	}

	s.MarkAsSynced()
	if snap = s.Snapshot(); len(snap.Sessions) != 0 {
		t.Error("session log should be cleared by MarkAsSynced")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore(t)
	s.UpdateVocabularyProgress("sana", models.VocabularyProgressPatch{Encounters: intPtr(2)})

	snap := s.PendingSyncData()
	snap.Vocabulary[0].Encounters = 99
	snap.LearningProgress.StoriesRead = 99

	if v, _ := s.VocabularyEntry("sana"); v.Encounters != 2 {
		t.Error("mutating a snapshot must not touch store state")
	}
	if s.LearningProgress().StoriesRead != 0 {
		t.Error("mutating a snapshot must not touch store state")
	}
}
