package models

import "time"

// LearningProgress is the per-user aggregate of overall learning activity
type LearningProgress struct {
	StoriesRead          int       `json:"stories_read" db:"stories_read"`
	VocabularyLearned    int       `json:"vocabulary_learned" db:"vocabulary_learned"`
	TotalTimeSpent       int       `json:"total_time_spent" db:"total_time_spent"` // Minutes
	CurrentStreak        int       `json:"current_streak" db:"current_streak"`     // Consecutive days of activity
	LongestStreak        int       `json:"longest_streak" db:"longest_streak"`
	CompletionPercentage float64   `json:"completion_percentage" db:"completion_percentage"`
	Level                int       `json:"level" db:"level"`
	ExperiencePoints     int       `json:"experience_points" db:"experience_points"`
	Achievements         []string  `json:"achievements" db:"achievements"`
	LastActivityAt       time.Time `json:"last_activity_at" db:"last_activity_at"`
}

// LearningProgressPatch describes a partial update to LearningProgress.
// Nil fields are left untouched.
type LearningProgressPatch struct {
	StoriesRead          *int       `json:"stories_read,omitempty"`
	VocabularyLearned    *int       `json:"vocabulary_learned,omitempty"`
	TotalTimeSpent       *int       `json:"total_time_spent,omitempty"`
	CurrentStreak        *int       `json:"current_streak,omitempty"`
	LongestStreak        *int       `json:"longest_streak,omitempty"`
	CompletionPercentage *float64   `json:"completion_percentage,omitempty"`
	Level                *int       `json:"level,omitempty"`
	ExperiencePoints     *int       `json:"experience_points,omitempty"`
	Achievements         []string   `json:"achievements,omitempty"`
	LastActivityAt       *time.Time `json:"last_activity_at,omitempty"`
}
