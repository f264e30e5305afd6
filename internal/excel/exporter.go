package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/lexsync/internal/database"
)

// ExportConfig defines the report export configuration
type ExportConfig struct {
	FilePath       string // Destination .xlsx path
	ProgressSheet  string // Sheet with the learning progress summary
	VocabSheet     string // Sheet with one row per vocabulary word
	ExercisesSheet string // Sheet with the exercise log
}

// DefaultExportConfig returns the default export configuration
func DefaultExportConfig(path string) ExportConfig {
	return ExportConfig{
		FilePath:       path,
		ProgressSheet:  "Progress",
		VocabSheet:     "Vocabulary",
		ExercisesSheet: "Exercises",
	}
}

// ExportResult holds counts of what was written
type ExportResult struct {
	VocabularyRows int
	ExerciseRows   int
}

// ExportReport writes the user's current progress to an Excel workbook:
// a summary sheet, one row per vocabulary word and the exercise log.
func ExportReport(store *database.ProgressStore, config ExportConfig) (*ExportResult, error) {
	snapshot := store.Snapshot()
	result := &ExportResult{}

	f := excelize.NewFile()
	defer f.Close()

	// Progress summary sheet
	f.SetSheetName("Sheet1", config.ProgressSheet)
	p := snapshot.LearningProgress
	st := snapshot.LearningStats
	summary := [][]interface{}{
		{"Stories read", p.StoriesRead},
		{"Vocabulary learned", p.VocabularyLearned},
		{"Total time spent (min)", p.TotalTimeSpent},
		{"Current streak (days)", p.CurrentStreak},
		{"Longest streak (days)", p.LongestStreak},
		{"Completion", fmt.Sprintf("%.1f%%", p.CompletionPercentage)},
		{"Level", p.Level},
		{"Experience points", p.ExperiencePoints},
		{"Vocabulary mastered", st.VocabularyMastered},
		{"Average score", fmt.Sprintf("%.1f", st.AverageScore)},
		{"Last activity", formatTime(p.LastActivityAt)},
		{"Last synced", formatTime(store.LastSyncTime())},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(config.ProgressSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %v", err)
		}
	}

	// Vocabulary sheet
	f.NewSheet(config.VocabSheet)
	header := []interface{}{"Word", "Status", "Encounters", "Correct", "Attempts", "Mastery", "Ease factor", "Last reviewed", "Next review"}
	if err := f.SetSheetRow(config.VocabSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write vocabulary header: %v", err)
	}
	for i, v := range snapshot.Vocabulary {
		row := []interface{}{
			v.Word, string(v.Status), v.Encounters, v.CorrectAnswers, v.TotalAttempts,
			v.MasteryLevel, v.EaseFactor, formatTime(v.LastReviewed), formatTime(v.NextReview),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(config.VocabSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write vocabulary row: %v", err)
		}
		result.VocabularyRows++
	}

	// Exercise log sheet
	f.NewSheet(config.ExercisesSheet)
	header = []interface{}{"Exercise", "Word", "Answer", "Correct", "Time spent (s)", "Attempts", "Recorded"}
	if err := f.SetSheetRow(config.ExercisesSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write exercises header: %v", err)
	}
	for i, r := range snapshot.ExerciseResults {
		row := []interface{}{
			r.ExerciseID, r.Word, r.UserAnswer, r.IsCorrect, r.TimeSpent, r.Attempts, formatTime(r.RecordedAt),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(config.ExercisesSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write exercise row: %v", err)
		}
		result.ExerciseRows++
	}

	if err := f.SaveAs(config.FilePath); err != nil {
		return nil, fmt.Errorf("failed to save report: %v", err)
	}
	return result, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
