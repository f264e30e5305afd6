package models

// LearningStats is the derived aggregate shown on dashboards and reports
type LearningStats struct {
	StoriesCompleted   int     `json:"stories_completed" db:"stories_completed"`
	VocabularyMastered int     `json:"vocabulary_mastered" db:"vocabulary_mastered"`
	TimeSpentToday     int     `json:"time_spent_today" db:"time_spent_today"` // Minutes
	TimeSpentWeek      int     `json:"time_spent_week" db:"time_spent_week"`
	TimeSpentTotal     int     `json:"time_spent_total" db:"time_spent_total"`
	CurrentStreak      int     `json:"current_streak" db:"current_streak"`
	LongestStreak      int     `json:"longest_streak" db:"longest_streak"`
	AverageScore       float64 `json:"average_score" db:"average_score"`
	CompletionRate     float64 `json:"completion_rate" db:"completion_rate"`
}

// LearningStatsPatch describes a partial update to LearningStats.
// Nil fields are left untouched.
type LearningStatsPatch struct {
	StoriesCompleted   *int     `json:"stories_completed,omitempty"`
	VocabularyMastered *int     `json:"vocabulary_mastered,omitempty"`
	TimeSpentToday     *int     `json:"time_spent_today,omitempty"`
	TimeSpentWeek      *int     `json:"time_spent_week,omitempty"`
	TimeSpentTotal     *int     `json:"time_spent_total,omitempty"`
	CurrentStreak      *int     `json:"current_streak,omitempty"`
	LongestStreak      *int     `json:"longest_streak,omitempty"`
	AverageScore       *float64 `json:"average_score,omitempty"`
	CompletionRate     *float64 `json:"completion_rate,omitempty"`
}
