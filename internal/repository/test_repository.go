package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizora/testroom-backend/internal/model"
)

// TestRepository handles test/variant tree data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// CreateTree inserts a test with its complete variant/question/answer-key
// tree in a single transaction, so a half-written tree is never visible.
func (r *TestRepository) CreateTree(ctx context.Context, detail *model.TestDetail) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO tests (id, title, description, owner_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		detail.ID, detail.Title, detail.Description, detail.OwnerID,
	).Scan(&detail.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert test: %w", err)
	}

	for vi := range detail.Variants {
		v := &detail.Variants[vi]
		err = tx.QueryRow(ctx,
			`INSERT INTO variants (id, test_id, name)
			 VALUES ($1, $2, $3)
			 RETURNING created_at`,
			v.ID, v.TestID, v.Name,
		).Scan(&v.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert variant: %w", err)
		}

		for qi := range v.Questions {
			q := &v.Questions[qi]
			_, err = tx.Exec(ctx,
				`INSERT INTO questions (id, variant_id, text, type, order_num, points)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				q.ID, q.VariantID, q.Text, q.Type, q.OrderNum, q.Points,
			)
			if err != nil {
				return fmt.Errorf("insert question: %w", err)
			}

			for _, opt := range q.Options {
				_, err = tx.Exec(ctx,
					`INSERT INTO options (id, question_id, text, is_correct)
					 VALUES ($1, $2, $3, $4)`,
					opt.ID, opt.QuestionID, opt.Text, opt.IsCorrect,
				)
				if err != nil {
					return fmt.Errorf("insert option: %w", err)
				}
			}

			for _, pair := range q.Pairs {
				_, err = tx.Exec(ctx,
					`INSERT INTO matching_pairs (id, question_id, left_text, right_text)
					 VALUES ($1, $2, $3, $4)`,
					pair.ID, pair.QuestionID, pair.Left, pair.Right,
				)
				if err != nil {
					return fmt.Errorf("insert matching pair: %w", err)
				}
			}
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a test by id.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, owner_id, created_at
		 FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID, &t.CreatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return t, nil
}

// ListByOwner retrieves a teacher's tests, newest first.
func (r *TestRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, owner_id, created_at
		 FROM tests WHERE owner_id = $1
		 ORDER BY created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID, &t.CreatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// ListVariants retrieves all variants of a test in creation order.
func (r *TestRepository) ListVariants(ctx context.Context, testID uuid.UUID) ([]model.Variant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, name, created_at
		 FROM variants WHERE test_id = $1
		 ORDER BY created_at ASC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []model.Variant
	for rows.Next() {
		var v model.Variant
		if err := rows.Scan(&v.ID, &v.TestID, &v.Name, &v.CreatedAt); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// Delete removes a test. The schema cascades to variants, questions,
// options, and matching pairs.
func (r *TestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
