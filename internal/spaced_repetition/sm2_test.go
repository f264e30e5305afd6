package spaced_repetition

import (
	"testing"
	"time"

	"github.com/example/lexsync/pkg/models"
)

var reviewTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestReviewSuccess(t *testing.T) {
	tests := []struct {
		name         string
		state        ReviewState
		result       ReviewResult
		wantInterval int
		wantReps     int
	}{
		{
			name:         "first review starts at one day",
			state:        ReviewState{EaseFactor: 2.5, Interval: 0, Repetitions: 0},
			result:       ReviewResult{Quality: 4, ResponseTimeSeconds: 4, IsCorrect: true},
			wantInterval: 1,
			wantReps:     1,
		},
		{
			name:         "second review jumps to six days",
			state:        ReviewState{EaseFactor: 2.5, Interval: 1, Repetitions: 1},
			result:       ReviewResult{Quality: 4, ResponseTimeSeconds: 4, IsCorrect: true},
			wantInterval: 6,
			wantReps:     2,
		},
		{
			name:         "later reviews multiply by the ease factor",
			state:        ReviewState{EaseFactor: 2.5, Interval: 10, Repetitions: 3},
			result:       ReviewResult{Quality: 5, ResponseTimeSeconds: 4, IsCorrect: true},
			wantInterval: 26, // round(10 * 2.6)
			wantReps:     4,
		},
		{
			name:         "new word with fast perfect answer stays clamped at one day",
			state:        ReviewState{EaseFactor: 2.5, Interval: 0, Repetitions: 0},
			result:       ReviewResult{Quality: 5, ResponseTimeSeconds: 2, IsCorrect: true},
			wantInterval: 1, // round(1 * 1.1)
			wantReps:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, due := Review(tt.state, tt.result, reviewTime)
			if next.Interval != tt.wantInterval {
				t.Errorf("interval = %d, want %d", next.Interval, tt.wantInterval)
			}
			if next.Repetitions != tt.wantReps {
				t.Errorf("repetitions = %d, want %d", next.Repetitions, tt.wantReps)
			}
			if wantDue := reviewTime.AddDate(0, 0, tt.wantInterval); !due.Equal(wantDue) {
				t.Errorf("next review = %v, want %v", due, wantDue)
			}
		})
	}
}

func TestReviewFailureResets(t *testing.T) {
	state := ReviewState{EaseFactor: 2.5, Interval: 30, Repetitions: 7}
	next, _ := Review(state, ReviewResult{Quality: 1, ResponseTimeSeconds: 4}, reviewTime)

	if next.Repetitions != 0 {
		t.Errorf("repetitions = %d, want 0", next.Repetitions)
	}
	if next.Interval != 1 {
		t.Errorf("interval = %d, want 1", next.Interval)
	}
	if next.EaseFactor != 2.3 {
		t.Errorf("ease factor = %f, want 2.3", next.EaseFactor)
	}
}

func TestReviewIntervalNeverShrinksOnSuccess(t *testing.T) {
	// Even with the slowest response penalty, a successful third or later
	// review never produces a shorter interval than the previous one.
	state := ReviewState{EaseFactor: 1.3, Interval: 10, Repetitions: 2}
	for quality := 3; quality <= 5; quality++ {
		next, _ := Review(state, ReviewResult{Quality: quality, ResponseTimeSeconds: 60, IsCorrect: true}, reviewTime)
		if next.Interval < state.Interval {
			t.Errorf("quality %d: interval shrank from %d to %d", quality, state.Interval, next.Interval)
		}
	}
}

func TestEaseFactorFloor(t *testing.T) {
	state := ReviewState{EaseFactor: 1.3, Interval: 1, Repetitions: 0}
	for i := 0; i < 10; i++ {
		state, _ = Review(state, ReviewResult{Quality: 0, ResponseTimeSeconds: 4}, reviewTime)
	}
	if state.EaseFactor < MinEaseFactor {
		t.Errorf("ease factor %f fell below floor %f", state.EaseFactor, MinEaseFactor)
	}
}

func TestMasteryClamped(t *testing.T) {
	tests := []struct {
		name    string
		state   ReviewState
		quality int
	}{
		{"extreme repetitions", ReviewState{EaseFactor: 2.5, Interval: 365, Repetitions: 1000}, 5},
		{"extreme ease factor", ReviewState{EaseFactor: 50, Interval: 365, Repetitions: 10}, 5},
		{"zero state", ReviewState{EaseFactor: 1.3, Interval: 0, Repetitions: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Mastery(tt.state, tt.quality)
			if m < 0 || m > 100 {
				t.Errorf("mastery = %d, want within [0, 100]", m)
			}
		})
	}
}

func TestStatusBoundaries(t *testing.T) {
	tests := []struct {
		repetitions int
		mastery     int
		want        models.VocabularyStatus
	}{
		{0, 0, models.VocabularyNew},
		{0, 99, models.VocabularyNew},
		{4, 90, models.VocabularyReviewing},
		{5, 85, models.VocabularyMastered},
		{5, 84, models.VocabularyReviewing},
		{1, 10, models.VocabularyReviewing},
	}

	for _, tt := range tests {
		if got := Status(tt.repetitions, tt.mastery); got != tt.want {
			t.Errorf("Status(%d, %d) = %q, want %q", tt.repetitions, tt.mastery, got, tt.want)
		}
	}
}

func TestResponseTimeModifier(t *testing.T) {
	tests := []struct {
		seconds float64
		want    float64
	}{
		{0, 1.2},  // instant answer capped at the max bonus
		{2, 1.1},
		{4, 1.0},  // optimal
		{6, 0.9},
		{8, 0.8},
		{60, 0.8}, // very slow answer capped at the max penalty
	}

	for _, tt := range tests {
		if got := responseTimeModifier(tt.seconds); got != tt.want {
			t.Errorf("responseTimeModifier(%v) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestNextDue(t *testing.T) {
	past := reviewTime.Add(-48 * time.Hour)
	recent := reviewTime.Add(-time.Hour)
	future := reviewTime.Add(72 * time.Hour)

	vocab := []models.VocabularyProgress{
		{Word: "hard", EaseFactor: 1.4, Repetitions: 3, NextReview: recent},
		{Word: "easy", EaseFactor: 2.8, Repetitions: 3, NextReview: past},
		{Word: "fresh", EaseFactor: 2.5, Repetitions: 0, NextReview: recent},
		{Word: "later", EaseFactor: 2.5, Repetitions: 2, NextReview: future},
	}

	due := NextDue(vocab, reviewTime, 0)
	if len(due) != 3 {
		t.Fatalf("len(due) = %d, want 3", len(due))
	}
	if due[0].Word != "fresh" {
		t.Errorf("first due = %q, want never-reviewed word first", due[0].Word)
	}
	if due[1].Word != "hard" {
		t.Errorf("second due = %q, want lowest ease factor next", due[1].Word)
	}

	limited := NextDue(vocab, reviewTime, 1)
	if len(limited) != 1 {
		t.Errorf("len(limited) = %d, want 1", len(limited))
	}
}
