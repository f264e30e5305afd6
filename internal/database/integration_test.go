package database

import (
	"path/filepath"
	"testing"

	"github.com/example/lexsync/pkg/models"
)

// TestStorePersistenceRoundTrip verifies that state written through the
// store survives a reload from the same database file.
func TestStorePersistenceRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "roundtrip.db")

	db, err := Connect("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	store, err := NewProgressStore(db, "user-1")
	if err != nil {
		t.Fatalf("NewProgressStore: %v", err)
	}

	stories := 4
	store.UpdateLearningProgress(models.LearningProgressPatch{StoriesRead: &stories})
	store.UpdateVocabularyProgress("sana", models.VocabularyProgressPatch{Encounters: &stories})
	store.AddExerciseResult(models.ExerciseResult{ExerciseID: "ex-1", Word: "sana", IsCorrect: true})
	store.AppendSession(models.LearningSession{ID: "s1", StoryID: "story-1"})

	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reload from disk
	db2, err := Connect("sqlite", dbPath)
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer db2.Close()

	reloaded, err := NewProgressStore(db2, "user-1")
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}

	if !reloaded.PendingSync() {
		t.Error("pending flag should survive reload")
	}
	if got := reloaded.LearningProgress().StoriesRead; got != 4 {
		t.Errorf("stories read = %d, want 4", got)
	}
	v, ok := reloaded.VocabularyEntry("sana")
	if !ok {
		t.Fatal("vocabulary entry should survive reload")
	}
	if v.Encounters != 5 { // 4 from the patch + 1 from the exercise cascade
		t.Errorf("encounters = %d, want 5", v.Encounters)
	}

	snap := reloaded.PendingSyncData()
	if len(snap.ExerciseResults) != 1 {
		t.Errorf("exercise log length = %d, want 1", len(snap.ExerciseResults))
	}
	if len(snap.Sessions) != 1 {
		t.Errorf("session log length = %d, want 1", len(snap.Sessions))
	}

	// Different users never collide on the same device
	other, err := NewProgressStore(db2, "user-2")
	if err != nil {
		t.Fatalf("second user store: %v", err)
	}
	if other.PendingSync() {
		t.Error("second user should start clean")
	}
}
