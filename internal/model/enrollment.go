package model

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment binds a student to a room and the variant they were assigned.
// At most one exists per (room, student); the assigned variant never
// changes once set.
type Enrollment struct {
	ID                uuid.UUID  `json:"id"`
	RoomID            uuid.UUID  `json:"room_id"`
	StudentID         uuid.UUID  `json:"student_id"`
	AssignedVariantID uuid.UUID  `json:"assigned_variant_id"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	Score             *int       `json:"score,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
