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

// TestService manages the teacher's test catalog. Tests are immutable
// after creation, so the whole variant tree arrives in one request.
type TestService struct {
	tests     TestStore
	questions QuestionStore
	cache     PayloadCache
	logger    zerolog.Logger
}

// NewTestService creates a TestService.
func NewTestService(tests TestStore, questions QuestionStore, cache PayloadCache, logger zerolog.Logger) *TestService {
	return &TestService{
		tests:     tests,
		questions: questions,
		cache:     cache,
		logger:    logger.With().Str("component", "test_service").Logger(),
	}
}

// Create persists a test with its full variant tree in one transaction
// and pre-warms the payload cache for each variant.
func (s *TestService) Create(ctx context.Context, ownerID uuid.UUID, req *model.CreateTestRequest) (*model.TestDetail, error) {
	now := time.Now()
	detail := &model.TestDetail{
		Test: model.Test{
			ID:          uuid.New(),
			Title:       req.Title,
			Description: req.Description,
			OwnerID:     ownerID,
			CreatedAt:   now,
		},
	}

	for vi, v := range req.Variants {
		name := v.Name
		if name == "" {
			name = fmt.Sprintf("Variant %d", vi+1)
		}
		variant := model.VariantDetail{
			Variant: model.Variant{
				ID:        uuid.New(),
				TestID:    detail.ID,
				Name:      name,
				CreatedAt: now,
			},
		}
		for qi, q := range v.Questions {
			points := q.Points
			if points == 0 {
				points = 1
			}
			question := model.QuestionDetail{
				Question: model.Question{
					ID:        uuid.New(),
					VariantID: variant.ID,
					Text:      q.Text,
					Type:      q.Type,
					OrderNum:  qi + 1,
					Points:    points,
				},
			}
			if err := validateQuestionShape(&q); err != nil {
				return nil, err
			}
			for _, o := range q.Options {
				question.Options = append(question.Options, model.Option{
					ID:         uuid.New(),
					QuestionID: question.ID,
					Text:       o.Text,
					IsCorrect:  o.IsCorrect,
				})
			}
			for _, p := range q.Pairs {
				question.Pairs = append(question.Pairs, model.MatchingPair{
					ID:         uuid.New(),
					QuestionID: question.ID,
					Left:       p.Left,
					Right:      p.Right,
				})
			}
			variant.Questions = append(variant.Questions, question)
		}
		detail.Variants = append(detail.Variants, variant)
	}

	if err := s.tests.CreateTree(ctx, detail); err != nil {
		return nil, fmt.Errorf("create test tree: %w", err)
	}

	s.warmCache(ctx, detail)

	s.logger.Info().
		Str("test_id", detail.ID.String()).
		Int("variants", len(detail.Variants)).
		Msg("test created")
	return detail, nil
}

// ErrQuestionShape indicates a question whose choices do not fit its type.
var ErrQuestionShape = errors.New("question body does not fit its type")

func validateQuestionShape(q *model.CreateQuestionRequest) error {
	switch q.Type {
	case model.QuestionTypeMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: MULTIPLE_CHOICE needs at least two options", ErrQuestionShape)
		}
		correct := 0
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: MULTIPLE_CHOICE needs exactly one correct option", ErrQuestionShape)
		}
	case model.QuestionTypeMatching:
		if len(q.Pairs) < 2 {
			return fmt.Errorf("%w: MATCHING needs at least two pairs", ErrQuestionShape)
		}
	case model.QuestionTypeOpen:
		if len(q.Options) > 0 || len(q.Pairs) > 0 {
			return fmt.Errorf("%w: OPEN takes no options or pairs", ErrQuestionShape)
		}
	}
	return nil
}

// warmCache pre-builds the student payload for every variant so the first
// join never pays the assembly cost. Failures are logged and forgotten;
// the cache is read-through anyway.
func (s *TestService) warmCache(ctx context.Context, detail *model.TestDetail) {
	if s.cache == nil {
		return
	}
	for _, v := range detail.Variants {
		payload := &model.VariantPayload{VariantID: v.ID}
		for _, q := range v.Questions {
			sq := model.QuestionForStudent{
				ID:       q.ID,
				Text:     q.Text,
				Type:     q.Type,
				OrderNum: q.OrderNum,
				Points:   q.Points,
			}
			for _, o := range q.Options {
				sq.Options = append(sq.Options, model.OptionForStudent{ID: o.ID, Text: o.Text})
			}
			for _, p := range q.Pairs {
				sq.Lefts = append(sq.Lefts, model.MatchingItem{ID: p.ID, Text: p.Left})
				sq.Rights = append(sq.Rights, model.MatchingItem{ID: p.ID, Text: p.Right})
			}
			payload.Questions = append(payload.Questions, sq)
		}
		if err := s.cache.SetVariantPayload(ctx, payload); err != nil {
			s.logger.Warn().Err(err).
				Str("variant_id", v.ID.String()).
				Msg("failed to warm payload cache")
		}
	}
}

// List returns the teacher's tests.
func (s *TestService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Test, error) {
	tests, err := s.tests.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	return tests, nil
}

// Get returns a test with its full tree, answer keys included, to its
// owner only.
func (s *TestService) Get(ctx context.Context, ownerID, testID uuid.UUID) (*model.TestDetail, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("test %s: %w", testID, ErrNotFound)
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	if test.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	variants, err := s.tests.ListVariants(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}

	detail := &model.TestDetail{Test: *test}
	for _, v := range variants {
		questions, err := s.questions.ListByVariant(ctx, v.ID)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		options, err := s.questions.ListOptionsForVariant(ctx, v.ID)
		if err != nil {
			return nil, fmt.Errorf("list options: %w", err)
		}
		pairs, err := s.questions.ListPairsForVariant(ctx, v.ID)
		if err != nil {
			return nil, fmt.Errorf("list pairs: %w", err)
		}

		optionsByQ := make(map[uuid.UUID][]model.Option)
		for _, o := range options {
			optionsByQ[o.QuestionID] = append(optionsByQ[o.QuestionID], o)
		}
		pairsByQ := make(map[uuid.UUID][]model.MatchingPair)
		for _, p := range pairs {
			pairsByQ[p.QuestionID] = append(pairsByQ[p.QuestionID], p)
		}

		vd := model.VariantDetail{Variant: v}
		for _, q := range questions {
			vd.Questions = append(vd.Questions, model.QuestionDetail{
				Question: q,
				Options:  optionsByQ[q.ID],
				Pairs:    pairsByQ[q.ID],
			})
		}
		detail.Variants = append(detail.Variants, vd)
	}
	return detail, nil
}

// Delete removes a test and, through the schema's cascades, everything
// hanging off it.
func (s *TestService) Delete(ctx context.Context, ownerID, testID uuid.UUID) error {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("test %s: %w", testID, ErrNotFound)
		}
		return fmt.Errorf("get test: %w", err)
	}
	if test.OwnerID != ownerID {
		return ErrForbidden
	}
	if err := s.tests.Delete(ctx, testID); err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	s.logger.Info().Str("test_id", testID.String()).Msg("test deleted")
	return nil
}
