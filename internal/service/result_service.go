package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/quizora/testroom-backend/internal/repository"
)

// ResultService exposes graded results with role-scoped visibility: the
// owning teacher sees the whole room, a student sees only their own.
type ResultService struct {
	rooms   RoomStore
	results ResultStore
}

// NewResultService creates a ResultService.
func NewResultService(rooms RoomStore, results ResultStore) *ResultService {
	return &ResultService{rooms: rooms, results: results}
}

// ListForTeacher returns every result of a room the teacher owns.
func (s *ResultService) ListForTeacher(ctx context.Context, teacherID, roomID uuid.UUID) ([]model.ResultWithStudent, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room.TeacherID != teacherID {
		return nil, ErrForbidden
	}

	results, err := s.results.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// GetForStudent returns the student's own result in a room. Before the
// room closes and grading runs there is nothing to return.
func (s *ResultService) GetForStudent(ctx context.Context, studentID, roomID uuid.UUID) (*model.Result, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("get room: %w", err)
	}

	result, err := s.results.GetByRoomAndStudent(ctx, roomID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResultNotReady
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return result, nil
}
