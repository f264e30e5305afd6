package spaced_repetition

import (
	"math"
	"sort"
	"time"

	"github.com/example/lexsync/pkg/models"
)

// Quality thresholds and response-time tuning for the SM-2 variant used here.
const (
	// PassThreshold is the lowest quality counted as a successful recall
	PassThreshold = 3
	// OptimalResponseSeconds is the response time that leaves the interval unchanged
	OptimalResponseSeconds = 4.0
	// MinEaseFactor is the floor the ease factor never drops below
	MinEaseFactor = 1.3
)

// ReviewState carries the scheduling state of one vocabulary item between reviews
type ReviewState struct {
	EaseFactor  float64
	Interval    int // Days
	Repetitions int
}

// ReviewResult is the outcome of a single review
type ReviewResult struct {
	Quality             int // 0-5, SM-2 quality of recall
	ResponseTimeSeconds float64
	IsCorrect           bool
}

// Review applies one review outcome to the given state and returns the new
// state plus the next review time. It is pure: the inputs are not mutated and
// the same inputs always produce the same outputs.
func Review(state ReviewState, result ReviewResult, now time.Time) (ReviewState, time.Time) {
	next := state

	if result.Quality >= PassThreshold {
		// Successful recall: adjust the ease factor by the SM-2 formula
		q := float64(result.Quality)
		ef := state.EaseFactor + (0.1 - (5.0-q)*(0.08+(5.0-q)*0.02))
		if ef < MinEaseFactor {
			ef = MinEaseFactor
		}
		next.EaseFactor = ef

		switch state.Repetitions {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(state.Interval) * ef))
		}
		next.Repetitions = state.Repetitions + 1
	} else {
		// Failed recall: reset the schedule and ease the factor down
		next.Repetitions = 0
		next.Interval = 1
		ef := state.EaseFactor - 0.2
		if ef < MinEaseFactor {
			ef = MinEaseFactor
		}
		next.EaseFactor = ef
	}

	// Fast answers stretch the interval, slow ones shrink it
	modifier := responseTimeModifier(result.ResponseTimeSeconds)
	interval := int(math.Round(float64(next.Interval) * modifier))
	if interval < 1 {
		interval = 1
	}
	next.Interval = interval

	return next, now.AddDate(0, 0, interval)
}

// responseTimeModifier maps a response time to an interval multiplier.
// Linear around the optimal time, clamped to [0.8, 1.2].
func responseTimeModifier(seconds float64) float64 {
	m := 1.0 + (OptimalResponseSeconds-seconds)*0.05
	if m > 1.2 {
		return 1.2
	}
	if m < 0.8 {
		return 0.8
	}
	return m
}

// Mastery estimates retention of an item as a 0-100 score from its scheduling
// state and the quality of the latest review.
func Mastery(state ReviewState, quality int) int {
	reps := float64(state.Repetitions) * 10
	if reps > 60 {
		reps = 60
	}
	ease := ((state.EaseFactor - MinEaseFactor) / 1.2) * 20
	interval := math.Log(float64(state.Interval)+1) * 3
	if interval > 15 {
		interval = 15
	}

	mastery := int(math.Round(reps + ease + interval + float64(quality)))
	if mastery < 0 {
		return 0
	}
	if mastery > 100 {
		return 100
	}
	return mastery
}

// Status classifies an item from its repetition count and mastery score
func Status(repetitions, mastery int) models.VocabularyStatus {
	switch {
	case repetitions == 0:
		return models.VocabularyNew
	case repetitions >= 5 && mastery >= 85:
		return models.VocabularyMastered
	default:
		return models.VocabularyReviewing
	}
}

// NextDue returns up to limit vocabulary items due for review at the given
// time, ordered by priority: never-reviewed words first, then the hardest
// words (lowest ease factor), then the most overdue.
func NextDue(vocabulary []models.VocabularyProgress, now time.Time, limit int) []models.VocabularyProgress {
	var due []models.VocabularyProgress
	for _, v := range vocabulary {
		if !v.NextReview.After(now) {
			due = append(due, v)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if (due[i].Repetitions == 0) != (due[j].Repetitions == 0) {
			return due[i].Repetitions == 0
		}
		if due[i].EaseFactor != due[j].EaseFactor {
			return due[i].EaseFactor < due[j].EaseFactor
		}
		return due[i].NextReview.Before(due[j].NextReview)
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}
