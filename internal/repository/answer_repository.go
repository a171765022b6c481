package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizora/testroom-backend/internal/model"
)

// AnswerRepository handles answer ledger data access.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Replace swaps an enrollment's full answer set in one transaction:
// delete all, insert all, stamp submitted_at. A concurrent reader never
// observes a half-replaced ledger. The room row is locked FOR SHARE
// first, so a close committing between the caller's status check and
// this write makes Replace return ErrRoomClosed instead of slipping an
// ungradeable submission into a closed room.
func (r *AnswerRepository) Replace(ctx context.Context, enrollmentID uuid.UUID, answers []model.Answer, submittedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var status model.RoomStatus
	if err := tx.QueryRow(ctx,
		`SELECT r.status
		 FROM rooms r
		 JOIN enrollments e ON e.room_id = r.id
		 WHERE e.id = $1
		 FOR SHARE OF r`, enrollmentID,
	).Scan(&status); err != nil {
		return fmt.Errorf("lock room: %w", wrapNotFound(err))
	}
	if status != model.RoomStatusOpen {
		return ErrRoomClosed
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM answers WHERE enrollment_id = $1`, enrollmentID); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}

	for i := range answers {
		a := &answers[i]
		if _, err := tx.Exec(ctx,
			`INSERT INTO answers (id, enrollment_id, question_id, value, is_correct)
			 VALUES ($1, $2, $3, $4, NULL)`,
			a.ID, a.EnrollmentID, a.QuestionID, a.Value,
		); err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE enrollments SET submitted_at = $1 WHERE id = $2`,
		submittedAt, enrollmentID); err != nil {
		return fmt.Errorf("stamp submitted_at: %w", err)
	}

	return tx.Commit(ctx)
}

// ListByEnrollment retrieves all stored answers of an enrollment.
func (r *AnswerRepository) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, enrollment_id, question_id, value, is_correct, created_at
		 FROM answers
		 WHERE enrollment_id = $1
		 ORDER BY created_at ASC`, enrollmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.EnrollmentID, &a.QuestionID, &a.Value, &a.IsCorrect, &a.CreatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// SetCorrectness persists the graded verdict on one answer.
func (r *AnswerRepository) SetCorrectness(ctx context.Context, answerID uuid.UUID, correct bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE answers SET is_correct = $1 WHERE id = $2`, correct, answerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
