package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the immutable graded outcome for one enrollment, created
// exactly once when the room closes.
type Result struct {
	ID           uuid.UUID `json:"id"`
	RoomID       uuid.UUID `json:"room_id"`
	StudentID    uuid.UUID `json:"student_id"`
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	Score        int       `json:"score"`
	TotalPoints  int       `json:"total_points"`
	Percentage   float64   `json:"percentage"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResultWithStudent is a result joined with the student's public profile,
// for the teacher's room results view.
type ResultWithStudent struct {
	Result
	Student PublicProfile `json:"student"`
}
