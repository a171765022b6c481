package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizora/testroom-backend/internal/model"
)

// ResultRepository handles graded result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create inserts a result. The UNIQUE constraint on enrollment_id makes
// results write-once: a retried grading run cannot produce duplicates.
// Returns ErrConflict when a result already exists for the enrollment.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO results (id, room_id, student_id, enrollment_id, score, total_points, percentage)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (enrollment_id) DO NOTHING
		 RETURNING created_at`,
		res.ID, res.RoomID, res.StudentID, res.EnrollmentID,
		res.Score, res.TotalPoints, res.Percentage,
	).Scan(&res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrConflict
	}
	return err
}

// ListByRoom retrieves all results of a room with each student's public
// profile, for the owning teacher.
func (r *ResultRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]model.ResultWithStudent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.id, res.room_id, res.student_id, res.enrollment_id,
		        res.score, res.total_points, res.percentage, res.created_at,
		        u.id, u.name
		 FROM results res
		 JOIN users u ON res.student_id = u.id
		 WHERE res.room_id = $1
		 ORDER BY u.name ASC`, roomID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ResultWithStudent
	for rows.Next() {
		var rw model.ResultWithStudent
		if err := rows.Scan(
			&rw.ID, &rw.RoomID, &rw.StudentID, &rw.EnrollmentID,
			&rw.Score, &rw.TotalPoints, &rw.Percentage, &rw.CreatedAt,
			&rw.Student.ID, &rw.Student.Name,
		); err != nil {
			return nil, err
		}
		results = append(results, rw)
	}
	return results, rows.Err()
}

// GetByRoomAndStudent retrieves one student's result in a room.
func (r *ResultRepository) GetByRoomAndStudent(ctx context.Context, roomID, studentID uuid.UUID) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, room_id, student_id, enrollment_id, score, total_points, percentage, created_at
		 FROM results
		 WHERE room_id = $1 AND student_id = $2`, roomID, studentID,
	).Scan(&res.ID, &res.RoomID, &res.StudentID, &res.EnrollmentID,
		&res.Score, &res.TotalPoints, &res.Percentage, &res.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return res, nil
}
