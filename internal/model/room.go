package model

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus enumerates the room lifecycle states. A room moves
// OPEN → CLOSED exactly once; CLOSED is terminal.
type RoomStatus string

const (
	RoomStatusOpen   RoomStatus = "OPEN"
	RoomStatusClosed RoomStatus = "CLOSED"
)

// Room is a time-boxed instance of a test that students join.
type Room struct {
	ID        uuid.UUID  `json:"id"`
	TestID    uuid.UUID  `json:"test_id"`
	TeacherID uuid.UUID  `json:"teacher_id"`
	Name      string     `json:"name"`
	Status    RoomStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// RoomWithTest is a room joined with its test summary for teacher listings.
type RoomWithTest struct {
	Room
	Test         *Test `json:"test,omitempty"`
	StudentCount int   `json:"student_count"`
}

// CreateRoomRequest is the payload for opening a new room.
type CreateRoomRequest struct {
	TestID uuid.UUID `json:"test_id" binding:"required"`
	Name   string    `json:"name" binding:"required,min=1,max=255"`
}
