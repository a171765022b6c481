package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizora/testroom-backend/internal/model"
)

// QuestionRepository handles question, option, and matching-pair reads.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByVariant retrieves a variant's questions ordered by order_num.
func (r *QuestionRepository) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, variant_id, text, type, order_num, points
		 FROM questions WHERE variant_id = $1
		 ORDER BY order_num ASC`, variantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.VariantID, &q.Text, &q.Type, &q.OrderNum, &q.Points); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListOptionsForVariant retrieves every option of a variant's questions in
// one query, for grading and payload building.
func (r *QuestionRepository) ListOptionsForVariant(ctx context.Context, variantID uuid.UUID) ([]model.Option, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.text, o.is_correct
		 FROM options o
		 JOIN questions q ON o.question_id = q.id
		 WHERE q.variant_id = $1
		 ORDER BY o.id`, variantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []model.Option
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// ListPairsForVariant retrieves every matching pair of a variant's
// questions in one query.
func (r *QuestionRepository) ListPairsForVariant(ctx context.Context, variantID uuid.UUID) ([]model.MatchingPair, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.question_id, p.left_text, p.right_text
		 FROM matching_pairs p
		 JOIN questions q ON p.question_id = q.id
		 WHERE q.variant_id = $1
		 ORDER BY p.created_at ASC`, variantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []model.MatchingPair
	for rows.Next() {
		var p model.MatchingPair
		if err := rows.Scan(&p.ID, &p.QuestionID, &p.Left, &p.Right); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
