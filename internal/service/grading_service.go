package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/quizora/testroom-backend/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// GradingFailure identifies one enrollment the close pass could not grade.
type GradingFailure struct {
	EnrollmentID uuid.UUID `json:"enrollment_id"`
	StudentID    uuid.UUID `json:"student_id"`
	Reason       string    `json:"reason"`
}

// GradingReport summarizes a room's grading pass. A failed enrollment
// never blocks the rest of the room. Error is set when the pass could
// not run at all, for example when the enrollment list failed to load.
type GradingReport struct {
	Graded   int              `json:"graded"`
	Failures []GradingFailure `json:"failures,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// GradingService grades every enrollment of a room when it closes.
type GradingService struct {
	enrollments EnrollmentStore
	questions   QuestionStore
	answers     AnswerStore
	results     ResultStore
	concurrency int
	logger      zerolog.Logger
}

// NewGradingService creates a GradingService. concurrency bounds how many
// enrollments grade in parallel; values below 1 fall back to 1.
func NewGradingService(
	enrollments EnrollmentStore,
	questions QuestionStore,
	answers AnswerStore,
	results ResultStore,
	concurrency int,
	logger zerolog.Logger,
) *GradingService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &GradingService{
		enrollments: enrollments,
		questions:   questions,
		answers:     answers,
		results:     results,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "grading_service").Logger(),
	}
}

// GradeRoom grades all enrollments of a closed room and returns a report.
// It only returns an error when the enrollment list itself cannot be
// loaded; per-enrollment failures are collected into the report instead.
func (s *GradingService) GradeRoom(ctx context.Context, room *model.Room) (*GradingReport, error) {
	enrollments, err := s.enrollments.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	// Variant keys are shared across enrollments, so load each variant's
	// tree once up front instead of per student.
	keys := make(map[uuid.UUID]*VariantKey)
	for _, e := range enrollments {
		if _, ok := keys[e.AssignedVariantID]; ok {
			continue
		}
		key, err := s.loadVariantKey(ctx, e.AssignedVariantID)
		if err != nil {
			s.logger.Error().Err(err).
				Str("variant_id", e.AssignedVariantID.String()).
				Msg("failed to load variant key")
			keys[e.AssignedVariantID] = nil
			continue
		}
		keys[e.AssignedVariantID] = key
	}

	report := &GradingReport{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, e := range enrollments {
		g.Go(func() error {
			key := keys[e.AssignedVariantID]
			var err error
			if key == nil {
				err = fmt.Errorf("variant %s key unavailable", e.AssignedVariantID)
			} else {
				err = s.gradeEnrollment(gctx, room, &e, key)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Error().Err(err).
					Str("room_id", room.ID.String()).
					Str("enrollment_id", e.ID.String()).
					Msg("failed to grade enrollment")
				report.Failures = append(report.Failures, GradingFailure{
					EnrollmentID: e.ID,
					StudentID:    e.StudentID,
					Reason:       err.Error(),
				})
			} else {
				report.Graded++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info().
		Str("room_id", room.ID.String()).
		Int("graded", report.Graded).
		Int("failed", len(report.Failures)).
		Msg("room grading finished")
	return report, nil
}

func (s *GradingService) loadVariantKey(ctx context.Context, variantID uuid.UUID) (*VariantKey, error) {
	questions, err := s.questions.ListByVariant(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	options, err := s.questions.ListOptionsForVariant(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	pairs, err := s.questions.ListPairsForVariant(ctx, variantID)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	return BuildVariantKey(questions, options, pairs), nil
}

func (s *GradingService) gradeEnrollment(ctx context.Context, room *model.Room, e *model.Enrollment, key *VariantKey) error {
	answers, err := s.answers.ListByEnrollment(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("list answers: %w", err)
	}

	score := GradeVariant(key, answers)

	for id, correct := range score.Verdicts {
		if err := s.answers.SetCorrectness(ctx, id, correct); err != nil {
			return fmt.Errorf("mark answer %s: %w", id, err)
		}
	}
	if err := s.enrollments.SetScore(ctx, e.ID, score.Score); err != nil {
		return fmt.Errorf("set score: %w", err)
	}

	res := &model.Result{
		ID:           uuid.New(),
		RoomID:       room.ID,
		StudentID:    e.StudentID,
		EnrollmentID: e.ID,
		Score:        score.Score,
		TotalPoints:  score.TotalPoints,
		Percentage:   score.Percentage,
		CreatedAt:    time.Now(),
	}
	if err := s.results.Create(ctx, res); err != nil {
		// A prior pass already wrote this enrollment's result; the first
		// write stands.
		if errors.Is(err, repository.ErrConflict) {
			return nil
		}
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}
