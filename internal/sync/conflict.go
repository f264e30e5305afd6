package sync

import "github.com/example/lexsync/pkg/models"

// Resolution is the caller's decision for one conflict
type Resolution string

const (
	ResolveLocal  Resolution = "local"  // upload the local value as-is
	ResolveServer Resolution = "server" // overwrite local with the server value
	ResolveMerge  Resolution = "merge"  // numeric fields take the max, otherwise local wins
)

// Conflict is a field-level divergence between local and server state that
// automatic merging could not settle. It is a closed union: exactly the
// four conflict payload types below implement it, so every merge path is
// checked against its own entity shape.
type Conflict interface {
	Entity() string
	Field() string
	// sealed prevents implementations outside this package
	sealed()
}

// Key identifies a conflict for manual resolution
type Key struct {
	Entity string
	Field  string
}

// LearningProgressConflict is a divergence on one scalar field of the
// per-user learning progress aggregate.
type LearningProgressConflict struct {
	FieldName string
	Local     models.LearningProgress
	Server    models.LearningProgress
}

func (c LearningProgressConflict) Entity() string { return "learning_progress" }
func (c LearningProgressConflict) Field() string  { return c.FieldName }
func (LearningProgressConflict) sealed()          {}

// VocabularyConflict is a divergence on one field of a vocabulary entry.
// The automatic max-wins merge never produces these; they exist for manual
// resolutions pushed down from a caller.
type VocabularyConflict struct {
	Word      string
	FieldName string
	Local     models.VocabularyProgress
	Server    models.VocabularyProgress
}

func (c VocabularyConflict) Entity() string { return "vocabulary_progress" }
func (c VocabularyConflict) Field() string  { return c.FieldName }
func (VocabularyConflict) sealed()          {}

// ExerciseResultConflict exists to complete the union; the exercise log is
// append-only and never conflicts in practice.
type ExerciseResultConflict struct {
	FieldName string
	Local     models.ExerciseResult
	Server    models.ExerciseResult
}

func (c ExerciseResultConflict) Entity() string { return "exercise_result" }
func (c ExerciseResultConflict) Field() string  { return c.FieldName }
func (ExerciseResultConflict) sealed()          {}

// StatsConflict is a divergence on one field of the derived statistics
type StatsConflict struct {
	FieldName string
	Local     models.LearningStats
	Server    models.LearningStats
}

func (c StatsConflict) Entity() string { return "learning_stats" }
func (c StatsConflict) Field() string  { return c.FieldName }
func (StatsConflict) sealed()          {}
