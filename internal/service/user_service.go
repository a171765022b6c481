package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/quizora/testroom-backend/internal/repository"
	"github.com/rs/zerolog"
)

// UserService covers the admin-only teacher account management.
type UserService struct {
	users  UserStore
	auth   *AuthService
	logger zerolog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users UserStore, auth *AuthService, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		auth:   auth,
		logger: logger.With().Str("component", "user_service").Logger(),
	}
}

// ListTeachers returns every teacher account.
func (s *UserService) ListTeachers(ctx context.Context) ([]model.User, error) {
	teachers, err := s.users.ListByRole(ctx, model.RoleTeacher)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// CreateTeacher creates a teacher account on an admin's behalf.
func (s *UserService) CreateTeacher(ctx context.Context, req *model.CreateTeacherRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Role:         model.RoleTeacher,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create teacher: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("teacher account created")
	return user, nil
}

// DeleteTeacher removes a teacher account. Only teacher accounts can be
// deleted through this path.
func (s *UserService) DeleteTeacher(ctx context.Context, teacherID uuid.UUID) error {
	user, err := s.users.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("teacher %s: %w", teacherID, ErrNotFound)
		}
		return fmt.Errorf("get teacher: %w", err)
	}
	if user.Role != model.RoleTeacher {
		return ErrForbidden
	}
	if err := s.users.Delete(ctx, teacherID); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	s.logger.Info().Str("user_id", teacherID.String()).Msg("teacher account deleted")
	return nil
}
