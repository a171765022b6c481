package model

import (
	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeMatching       QuestionType = "MATCHING"
	QuestionTypeOpen           QuestionType = "OPEN"
)

// Question represents a single question within a variant.
// OrderNum defines the display and grading sequence.
type Question struct {
	ID        uuid.UUID    `json:"id"`
	VariantID uuid.UUID    `json:"variant_id"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	OrderNum  int          `json:"order"`
	Points    int          `json:"points"`
}

// Option is one answer choice for a MULTIPLE_CHOICE question.
type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
}

// MatchingPair is one left↔right pair of a MATCHING question. The pair's
// own id doubles as the identifier the student must map the left side to
// on the right side.
type MatchingPair struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Left       string    `json:"left"`
	Right      string    `json:"right"`
}

// ────────────────────────────────────────────────────────────────────────────
// Student-facing views (answer key stripped)
// ────────────────────────────────────────────────────────────────────────────

// OptionForStudent is an option without the is_correct flag.
type OptionForStudent struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// MatchingItem is one side of a matching pair as shown to a student.
// ID is the pair id the student echoes back in their mapping.
type MatchingItem struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

// QuestionForStudent is a question as delivered to an enrolled student.
// For MATCHING, Lefts is in pair order and Rights is shuffled per request.
type QuestionForStudent struct {
	ID       uuid.UUID          `json:"id"`
	Text     string             `json:"text"`
	Type     QuestionType       `json:"type"`
	OrderNum int                `json:"order"`
	Points   int                `json:"points"`
	Options  []OptionForStudent `json:"options,omitempty"`
	Lefts    []MatchingItem     `json:"lefts,omitempty"`
	Rights   []MatchingItem     `json:"rights,omitempty"`
}

// VariantPayload is the Redis-cached question set for one variant, stored
// without correct answers and with matching sides in canonical pair order.
// The rights permutation is applied per request, after the cache read.
type VariantPayload struct {
	VariantID uuid.UUID            `json:"variant_id"`
	Questions []QuestionForStudent `json:"questions"`
}
