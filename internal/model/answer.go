package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Answer is one stored answer of an enrollment for one question. Value is
// a tagged union keyed by the owning question's type:
//   - MULTIPLE_CHOICE: JSON string holding the selected option id
//   - MATCHING:        JSON array of {left_id, right_id} objects
//   - OPEN:            JSON string holding free text
//
// IsCorrect stays null until the room closes and grading runs.
type Answer struct {
	ID           uuid.UUID       `json:"id"`
	EnrollmentID uuid.UUID       `json:"enrollment_id"`
	QuestionID   uuid.UUID       `json:"question_id"`
	Value        json.RawMessage `json:"answer"`
	IsCorrect    *bool           `json:"is_correct"`
	CreatedAt    time.Time       `json:"created_at"`
}

// MatchSelection is one left→right mapping of a MATCHING answer.
type MatchSelection struct {
	LeftID  uuid.UUID `json:"left_id"`
	RightID uuid.UUID `json:"right_id"`
}

// ErrAnswerShape indicates an answer value that does not decode into the
// shape its question type requires.
var ErrAnswerShape = errors.New("answer value does not match question type")

// OptionID decodes a MULTIPLE_CHOICE answer value.
func (a *Answer) OptionID() (uuid.UUID, error) {
	var raw string
	if err := json.Unmarshal(a.Value, &raw); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrAnswerShape, err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrAnswerShape, err)
	}
	return id, nil
}

// Matches decodes a MATCHING answer value.
func (a *Answer) Matches() ([]MatchSelection, error) {
	var sels []MatchSelection
	if err := json.Unmarshal(a.Value, &sels); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnswerShape, err)
	}
	return sels, nil
}

// Text decodes an OPEN answer value.
func (a *Answer) Text() (string, error) {
	var s string
	if err := json.Unmarshal(a.Value, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnswerShape, err)
	}
	return s, nil
}

// ValidateAnswerValue checks a raw answer value against the owning
// question's type before it is accepted into the ledger.
func ValidateAnswerValue(qType QuestionType, value json.RawMessage) error {
	switch qType {
	case QuestionTypeMultipleChoice:
		var raw string
		if err := json.Unmarshal(value, &raw); err != nil {
			return ErrAnswerShape
		}
		if _, err := uuid.Parse(raw); err != nil {
			return ErrAnswerShape
		}
	case QuestionTypeMatching:
		var sels []MatchSelection
		if err := json.Unmarshal(value, &sels); err != nil {
			return ErrAnswerShape
		}
	case QuestionTypeOpen:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return ErrAnswerShape
		}
	default:
		return fmt.Errorf("unknown question type %q", qType)
	}
	return nil
}

// SubmittedAnswer is one answer in a submission payload.
type SubmittedAnswer struct {
	QuestionID uuid.UUID       `json:"question_id" binding:"required"`
	Value      json.RawMessage `json:"answer" binding:"required"`
}

// SubmitAnswersRequest replaces the enrollment's full answer set.
type SubmitAnswersRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,dive"`
}
