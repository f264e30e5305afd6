package models

import "time"

// LearningSession is one bounded stretch of learning activity.
// At most one session per user is active at a time.
type LearningSession struct {
	ID                 string     `json:"id" db:"id"`
	StoryID            string     `json:"story_id" db:"story_id"`
	StartTime          time.Time  `json:"start_time" db:"start_time"`
	EndTime            *time.Time `json:"end_time,omitempty" db:"end_time"`
	TimeSpent          int        `json:"time_spent" db:"time_spent"` // Seconds
	WordsEncountered   []string   `json:"words_encountered" db:"words_encountered"`
	ExercisesCompleted []string   `json:"exercises_completed" db:"exercises_completed"`
	Completed          bool       `json:"completed" db:"completed"`
}
