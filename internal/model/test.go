package model

import (
	"time"

	"github.com/google/uuid"
)

// Test is the immutable root of a variant tree, owned by a teacher.
type Test struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Variant is one self-contained form of a test.
type Variant struct {
	ID        uuid.UUID `json:"id"`
	TestID    uuid.UUID `json:"test_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ────────────────────────────────────────────────────────────────────────────
// Teacher-facing detail tree
// ────────────────────────────────────────────────────────────────────────────

// QuestionDetail is a question with its full answer key, for the owner.
type QuestionDetail struct {
	Question
	Options []Option       `json:"options,omitempty"`
	Pairs   []MatchingPair `json:"pairs,omitempty"`
}

// VariantDetail is a variant with its ordered questions.
type VariantDetail struct {
	Variant
	Questions []QuestionDetail `json:"questions"`
}

// TestDetail is a test with its full variant tree.
type TestDetail struct {
	Test
	Variants []VariantDetail `json:"variants"`
}

// ────────────────────────────────────────────────────────────────────────────
// Create payloads (one request creates the whole tree)
// ────────────────────────────────────────────────────────────────────────────

// CreateOptionRequest is one option of a new MULTIPLE_CHOICE question.
type CreateOptionRequest struct {
	Text      string `json:"text" binding:"required,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateMatchingPairRequest is one pair of a new MATCHING question.
type CreateMatchingPairRequest struct {
	Left  string `json:"left" binding:"required,max=500"`
	Right string `json:"right" binding:"required,max=500"`
}

// CreateQuestionRequest is one question of a new variant. Points defaults
// to 1 when omitted.
type CreateQuestionRequest struct {
	Text    string                      `json:"text" binding:"required,max=2000"`
	Type    QuestionType                `json:"type" binding:"required,oneof=MULTIPLE_CHOICE MATCHING OPEN"`
	Points  int                         `json:"points" binding:"omitempty,min=1"`
	Options []CreateOptionRequest       `json:"options" binding:"omitempty,dive"`
	Pairs   []CreateMatchingPairRequest `json:"pairs" binding:"omitempty,dive"`
}

// CreateVariantRequest is one variant of a new test.
type CreateVariantRequest struct {
	Name      string                  `json:"name" binding:"omitempty,max=100"`
	Questions []CreateQuestionRequest `json:"questions" binding:"omitempty,dive"`
}

// CreateTestRequest is the payload for creating a test with its variants,
// questions, and answer keys in a single request.
type CreateTestRequest struct {
	Title       string                 `json:"title" binding:"required,min=1,max=255"`
	Description string                 `json:"description" binding:"omitempty,max=2000"`
	Variants    []CreateVariantRequest `json:"variants" binding:"required,min=1,dive"`
}
