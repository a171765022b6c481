package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizora/testroom-backend/internal/model"
)

// EnrollmentRepository handles enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// FindOrCreate atomically ensures at most one enrollment per (room,
// student). The UNIQUE constraint plus ON CONFLICT DO NOTHING makes
// concurrent joins safe: the loser of the race reads the winner's row and
// the variant pre-picked by the caller is discarded. Returns true when a
// new enrollment was created.
func (r *EnrollmentRepository) FindOrCreate(ctx context.Context, e *model.Enrollment) (bool, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO enrollments (id, room_id, student_id, assigned_variant_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (room_id, student_id) DO NOTHING
		 RETURNING id, created_at`,
		e.ID, e.RoomID, e.StudentID, e.AssignedVariantID,
	).Scan(&e.ID, &e.CreatedAt)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	// Conflict: another join won. Return the existing binding unchanged.
	existing, err := r.GetByRoomAndStudent(ctx, e.RoomID, e.StudentID)
	if err != nil {
		return false, fmt.Errorf("fetch existing enrollment: %w", err)
	}
	*e = *existing
	return false, nil
}

// GetByRoomAndStudent retrieves the enrollment for a (room, student) pair.
func (r *EnrollmentRepository) GetByRoomAndStudent(ctx context.Context, roomID, studentID uuid.UUID) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, room_id, student_id, assigned_variant_id, submitted_at, score, created_at
		 FROM enrollments
		 WHERE room_id = $1 AND student_id = $2`, roomID, studentID,
	).Scan(&e.ID, &e.RoomID, &e.StudentID, &e.AssignedVariantID, &e.SubmittedAt, &e.Score, &e.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return e, nil
}

// ListByRoom retrieves all enrollments of a room.
func (r *EnrollmentRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, room_id, student_id, assigned_variant_id, submitted_at, score, created_at
		 FROM enrollments
		 WHERE room_id = $1
		 ORDER BY created_at ASC`, roomID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.RoomID, &e.StudentID, &e.AssignedVariantID, &e.SubmittedAt, &e.Score, &e.CreatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// SetScore writes the graded score onto an enrollment.
func (r *EnrollmentRepository) SetScore(ctx context.Context, enrollmentID uuid.UUID, score int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE enrollments SET score = $1 WHERE id = $2`, score, enrollmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
