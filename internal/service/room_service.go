package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/quizora/testroom-backend/internal/repository"
	"github.com/rs/zerolog"
)

// RoomService manages the room lifecycle: creation, listing, and the
// one-way OPEN → CLOSED transition that triggers grading.
type RoomService struct {
	rooms   RoomStore
	tests   TestStore
	grading *GradingService
	logger  zerolog.Logger
}

// NewRoomService creates a RoomService.
func NewRoomService(rooms RoomStore, tests TestStore, grading *GradingService, logger zerolog.Logger) *RoomService {
	return &RoomService{
		rooms:   rooms,
		tests:   tests,
		grading: grading,
		logger:  logger.With().Str("component", "room_service").Logger(),
	}
}

// Create opens a new room for one of the teacher's tests.
func (s *RoomService) Create(ctx context.Context, teacherID uuid.UUID, req *model.CreateRoomRequest) (*model.Room, error) {
	test, err := s.tests.GetByID(ctx, req.TestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("test %s: %w", req.TestID, ErrNotFound)
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	if test.OwnerID != teacherID {
		return nil, ErrForbidden
	}

	room := &model.Room{
		ID:        uuid.New(),
		TestID:    test.ID,
		TeacherID: teacherID,
		Name:      req.Name,
		Status:    model.RoomStatusOpen,
		CreatedAt: time.Now(),
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.logger.Info().
		Str("room_id", room.ID.String()).
		Str("test_id", test.ID.String()).
		Msg("room opened")
	return room, nil
}

// Get returns a room by id. Any authenticated caller may look a room up;
// students need it to join from a link.
func (s *RoomService) Get(ctx context.Context, roomID uuid.UUID) (*model.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

// GetOwned returns a room only to the teacher who opened it.
func (s *RoomService) GetOwned(ctx context.Context, teacherID, roomID uuid.UUID) (*model.Room, error) {
	room, err := s.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.TeacherID != teacherID {
		return nil, ErrForbidden
	}
	return room, nil
}

// ListByTeacher returns the teacher's rooms with test summary and
// enrolled-student counts.
func (s *RoomService) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.RoomWithTest, error) {
	rooms, err := s.rooms.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Close transitions the room to CLOSED and grades every enrollment before
// returning. The conditional store update decides races: only the caller
// that flips the status runs grading, any later attempt gets
// ErrRoomAlreadyClosed.
func (s *RoomService) Close(ctx context.Context, teacherID, roomID uuid.UUID) (*model.Room, *GradingReport, error) {
	room, err := s.GetOwned(ctx, teacherID, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room.Status != model.RoomStatusOpen {
		return nil, nil, ErrRoomAlreadyClosed
	}

	closedAt := time.Now()
	won, err := s.rooms.Close(ctx, roomID, closedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("close room: %w", err)
	}
	if !won {
		return nil, nil, ErrRoomAlreadyClosed
	}
	room.Status = model.RoomStatusClosed
	room.ClosedAt = &closedAt

	report, err := s.grading.GradeRoom(ctx, room)
	if err != nil {
		// The room stays closed; grading errors surface in the report so
		// the teacher can retry or inspect, not reopen.
		s.logger.Error().Err(err).
			Str("room_id", roomID.String()).
			Msg("grading pass failed to start")
		report = &GradingReport{Error: err.Error()}
	}

	s.logger.Info().
		Str("room_id", roomID.String()).
		Int("graded", report.Graded).
		Msg("room closed")
	return room, report, nil
}
