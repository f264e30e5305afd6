package sync

import "github.com/example/lexsync/pkg/models"

// Merge policies. Vocabulary and statistics merge automatically because
// their fields only grow or have a single natural owner; the learning
// progress aggregate surfaces per-field conflicts instead and is merged
// here only once a caller resolves them.

// mergeVocabulary combines a local and a server entry for the same word:
// max wins on every counter, the later timestamp wins on lastReviewed and
// nextReview, and the scheduling state follows whichever side reviewed last.
func mergeVocabulary(local, server models.VocabularyProgress) models.VocabularyProgress {
	merged := local

	merged.Encounters = maxInt(local.Encounters, server.Encounters)
	merged.CorrectAnswers = maxInt(local.CorrectAnswers, server.CorrectAnswers)
	merged.TotalAttempts = maxInt(local.TotalAttempts, server.TotalAttempts)
	merged.MasteryLevel = maxInt(local.MasteryLevel, server.MasteryLevel)

	if server.LastReviewed.After(local.LastReviewed) {
		merged.LastReviewed = server.LastReviewed
		merged.NextReview = server.NextReview
		merged.EaseFactor = server.EaseFactor
		merged.Interval = server.Interval
		merged.Repetitions = server.Repetitions
		merged.Status = server.Status
	}

	return merged
}

// mergeStats combines local and server statistics per field: max for the
// monotonic counters, local wins for today's time, arithmetic mean for the
// average score.
func mergeStats(local, server models.LearningStats) models.LearningStats {
	merged := local

	merged.StoriesCompleted = maxInt(local.StoriesCompleted, server.StoriesCompleted)
	merged.VocabularyMastered = maxInt(local.VocabularyMastered, server.VocabularyMastered)
	merged.TimeSpentWeek = maxInt(local.TimeSpentWeek, server.TimeSpentWeek)
	merged.TimeSpentTotal = maxInt(local.TimeSpentTotal, server.TimeSpentTotal)
	merged.CurrentStreak = maxInt(local.CurrentStreak, server.CurrentStreak)
	merged.LongestStreak = maxInt(local.LongestStreak, server.LongestStreak)
	if server.CompletionRate > local.CompletionRate {
		merged.CompletionRate = server.CompletionRate
	}

	// TimeSpentToday stays local: the device doing the syncing is the one
	// that has been counting today's minutes.
	merged.TimeSpentToday = local.TimeSpentToday

	if local.AverageScore == 0 {
		merged.AverageScore = server.AverageScore
	} else if server.AverageScore != 0 {
		merged.AverageScore = (local.AverageScore + server.AverageScore) / 2
	}

	return merged
}

// mergeLearningProgressField applies the generalized merge policy to one
// conflicted field of the learning progress aggregate: numeric max, local
// wins otherwise.
func mergeLearningProgressField(field string, local, server models.LearningProgress) models.LearningProgress {
	merged := local
	switch field {
	case "stories_read":
		merged.StoriesRead = maxInt(local.StoriesRead, server.StoriesRead)
	case "vocabulary_learned":
		merged.VocabularyLearned = maxInt(local.VocabularyLearned, server.VocabularyLearned)
	}
	return merged
}

// applyServerLearningProgressField copies one conflicted field from the
// server value into the local aggregate.
func applyServerLearningProgressField(field string, local, server models.LearningProgress) models.LearningProgress {
	merged := local
	switch field {
	case "stories_read":
		merged.StoriesRead = server.StoriesRead
	case "vocabulary_learned":
		merged.VocabularyLearned = server.VocabularyLearned
	}
	return merged
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
