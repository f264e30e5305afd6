package models

import "time"

// ExerciseResult is one entry of the append-only exercise log
type ExerciseResult struct {
	ExerciseID string    `json:"exercise_id" db:"exercise_id"`
	Word       string    `json:"word,omitempty" db:"word"` // Vocabulary word the exercise targets, if any
	UserAnswer string    `json:"user_answer" db:"user_answer"`
	IsCorrect  bool      `json:"is_correct" db:"is_correct"`
	TimeSpent  int       `json:"time_spent" db:"time_spent"` // Seconds
	Attempts   int       `json:"attempts" db:"attempts"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}
