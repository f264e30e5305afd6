package models

import "time"

// VocabularyStatus describes how far along a word is
type VocabularyStatus string

const (
	VocabularyNew       VocabularyStatus = "new"
	VocabularyReviewing VocabularyStatus = "reviewing"
	VocabularyMastered  VocabularyStatus = "mastered"
)

// VocabularyProgress tracks a user's progress with a specific word.
// Words are unique per user. EaseFactor, Interval and Repetitions carry
// the spaced-repetition scheduling state between reviews.
type VocabularyProgress struct {
	Word           string           `json:"word" db:"word"`
	Status         VocabularyStatus `json:"status" db:"status"`
	Encounters     int              `json:"encounters" db:"encounters"`
	CorrectAnswers int              `json:"correct_answers" db:"correct_answers"`
	TotalAttempts  int              `json:"total_attempts" db:"total_attempts"`
	LastReviewed   time.Time        `json:"last_reviewed" db:"last_reviewed"`
	NextReview     time.Time        `json:"next_review" db:"next_review"`
	MasteryLevel   int              `json:"mastery_level" db:"mastery_level"`   // 0-100
	EaseFactor     float64          `json:"ease_factor" db:"ease_factor"`       // SM-2 EF parameter, never below 1.3
	Interval       int              `json:"interval" db:"interval"`             // Current interval in days
	Repetitions    int              `json:"repetitions" db:"repetitions"`       // Number of successful reviews in a row
}

// VocabularyProgressPatch describes a partial update to a vocabulary entry.
// Nil fields are left untouched.
type VocabularyProgressPatch struct {
	Status         *VocabularyStatus `json:"status,omitempty"`
	Encounters     *int              `json:"encounters,omitempty"`
	CorrectAnswers *int              `json:"correct_answers,omitempty"`
	TotalAttempts  *int              `json:"total_attempts,omitempty"`
	LastReviewed   *time.Time        `json:"last_reviewed,omitempty"`
	NextReview     *time.Time        `json:"next_review,omitempty"`
	MasteryLevel   *int              `json:"mastery_level,omitempty"`
	EaseFactor     *float64          `json:"ease_factor,omitempty"`
	Interval       *int              `json:"interval,omitempty"`
	Repetitions    *int              `json:"repetitions,omitempty"`
}
