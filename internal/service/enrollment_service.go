package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/quizora/testroom-backend/internal/repository"
	"github.com/rs/zerolog"
)

// StudentPaper is everything an enrolled student needs to take the test:
// their enrollment, the assigned variant's questions with the answer key
// stripped, and any answers they already saved.
type StudentPaper struct {
	Enrollment *model.Enrollment          `json:"enrollment"`
	Questions  []model.QuestionForStudent `json:"questions"`
	Answers    []model.Answer             `json:"answers"`
}

// EnrollmentService handles the student side of a room: joining, fetching
// the assigned paper, and submitting answers.
type EnrollmentService struct {
	rooms       RoomStore
	tests       TestStore
	questions   QuestionStore
	enrollments EnrollmentStore
	answers     AnswerStore
	cache       PayloadCache
	logger      zerolog.Logger

	// intn picks uniformly from [0, n). Tests override it.
	intn func(n int) int
}

// NewEnrollmentService creates an EnrollmentService.
func NewEnrollmentService(
	rooms RoomStore,
	tests TestStore,
	questions QuestionStore,
	enrollments EnrollmentStore,
	answers AnswerStore,
	cache PayloadCache,
	logger zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		rooms:       rooms,
		tests:       tests,
		questions:   questions,
		enrollments: enrollments,
		answers:     answers,
		cache:       cache,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		intn:        rand.IntN,
	}
}

// Join enrolls the student in an open room, assigning a uniformly random
// variant. Joining again returns the existing enrollment with the same
// variant, whatever variant a concurrent join raced to assign first.
func (s *EnrollmentService) Join(ctx context.Context, studentID, roomID uuid.UUID) (*model.Enrollment, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room.Status != model.RoomStatusOpen {
		return nil, ErrRoomClosed
	}

	variants, err := s.tests.ListVariants(ctx, room.TestID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	if len(variants) == 0 {
		return nil, ErrNoVariants
	}
	assigned := variants[s.intn(len(variants))]

	enrollment := &model.Enrollment{
		ID:                uuid.New(),
		RoomID:            roomID,
		StudentID:         studentID,
		AssignedVariantID: assigned.ID,
		CreatedAt:         time.Now(),
	}
	created, err := s.enrollments.FindOrCreate(ctx, enrollment)
	if err != nil {
		return nil, fmt.Errorf("find or create enrollment: %w", err)
	}
	if created {
		s.logger.Info().
			Str("room_id", roomID.String()).
			Str("student_id", studentID.String()).
			Str("variant_id", enrollment.AssignedVariantID.String()).
			Msg("student joined room")
	}
	return enrollment, nil
}

// GetPaper returns the student's assigned questions and saved answers.
// Matching right-hand sides are shuffled fresh on every call so the
// delivered order carries no information about the key.
func (s *EnrollmentService) GetPaper(ctx context.Context, studentID, roomID uuid.UUID) (*StudentPaper, error) {
	enrollment, err := s.requireEnrollment(ctx, studentID, roomID)
	if err != nil {
		return nil, err
	}

	payload, err := s.loadPayload(ctx, enrollment.AssignedVariantID)
	if err != nil {
		return nil, err
	}

	answers, err := s.answers.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	questions := make([]model.QuestionForStudent, len(payload.Questions))
	copy(questions, payload.Questions)
	for i := range questions {
		questions[i].Rights = s.shuffled(questions[i].Rights)
	}

	return &StudentPaper{
		Enrollment: enrollment,
		Questions:  questions,
		Answers:    answers,
	}, nil
}

// Submit replaces the enrollment's full answer set. Answers may be
// resubmitted any number of times while the room stays open; each
// submission starts ungraded.
func (s *EnrollmentService) Submit(ctx context.Context, studentID, roomID uuid.UUID, req *model.SubmitAnswersRequest) (*model.Enrollment, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room.Status != model.RoomStatusOpen {
		return nil, ErrRoomClosed
	}

	enrollment, err := s.requireEnrollment(ctx, studentID, roomID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByVariant(ctx, enrollment.AssignedVariantID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	typeByID := make(map[uuid.UUID]model.QuestionType, len(questions))
	for _, q := range questions {
		typeByID[q.ID] = q.Type
	}

	submittedAt := time.Now()
	answers := make([]model.Answer, 0, len(req.Answers))
	seen := make(map[uuid.UUID]bool, len(req.Answers))
	for _, a := range req.Answers {
		qType, ok := typeByID[a.QuestionID]
		if !ok {
			return nil, fmt.Errorf("question %s: %w", a.QuestionID, ErrUnknownQuestion)
		}
		if seen[a.QuestionID] {
			return nil, fmt.Errorf("question %s answered twice: %w", a.QuestionID, model.ErrAnswerShape)
		}
		seen[a.QuestionID] = true
		if err := model.ValidateAnswerValue(qType, a.Value); err != nil {
			return nil, fmt.Errorf("question %s: %w", a.QuestionID, err)
		}
		answers = append(answers, model.Answer{
			ID:           uuid.New(),
			EnrollmentID: enrollment.ID,
			QuestionID:   a.QuestionID,
			Value:        a.Value,
			CreatedAt:    submittedAt,
		})
	}

	if err := s.answers.Replace(ctx, enrollment.ID, answers, submittedAt); err != nil {
		// The store re-checks the room under lock; a close that committed
		// after the status check above surfaces here.
		if errors.Is(err, repository.ErrRoomClosed) {
			return nil, ErrRoomClosed
		}
		return nil, fmt.Errorf("replace answers: %w", err)
	}
	enrollment.SubmittedAt = &submittedAt

	s.logger.Info().
		Str("enrollment_id", enrollment.ID.String()).
		Int("answers", len(answers)).
		Msg("answers submitted")
	return enrollment, nil
}

func (s *EnrollmentService) requireEnrollment(ctx context.Context, studentID, roomID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.enrollments.GetByRoomAndStudent(ctx, roomID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return enrollment, nil
}

// loadPayload reads the variant payload through the cache. Cache failures
// only cost a database round trip.
func (s *EnrollmentService) loadPayload(ctx context.Context, variantID uuid.UUID) (*model.VariantPayload, error) {
	if s.cache != nil {
		payload, err := s.cache.GetVariantPayload(ctx, variantID)
		if err == nil {
			return payload, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn().Err(err).
				Str("variant_id", variantID.String()).
				Msg("payload cache read failed")
		}
	}

	payload, err := s.buildPayload(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetVariantPayload(ctx, payload); err != nil {
			s.logger.Warn().Err(err).
				Str("variant_id", variantID.String()).
				Msg("payload cache write failed")
		}
	}
	return payload, nil
}

// buildPayload assembles a variant's student-facing payload from the
// store, stripping option correctness and keeping matching sides in
// canonical pair order.
func (s *EnrollmentService) buildPayload(ctx context.Context, variantID uuid.UUID) (*model.VariantPayload, error) {
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

	optionsByQ := make(map[uuid.UUID][]model.OptionForStudent)
	for _, o := range options {
		optionsByQ[o.QuestionID] = append(optionsByQ[o.QuestionID], model.OptionForStudent{ID: o.ID, Text: o.Text})
	}
	leftsByQ := make(map[uuid.UUID][]model.MatchingItem)
	rightsByQ := make(map[uuid.UUID][]model.MatchingItem)
	for _, p := range pairs {
		leftsByQ[p.QuestionID] = append(leftsByQ[p.QuestionID], model.MatchingItem{ID: p.ID, Text: p.Left})
		rightsByQ[p.QuestionID] = append(rightsByQ[p.QuestionID], model.MatchingItem{ID: p.ID, Text: p.Right})
	}

	payload := &model.VariantPayload{
		VariantID: variantID,
		Questions: make([]model.QuestionForStudent, 0, len(questions)),
	}
	for _, q := range questions {
		payload.Questions = append(payload.Questions, model.QuestionForStudent{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			OrderNum: q.OrderNum,
			Points:   q.Points,
			Options:  optionsByQ[q.ID],
			Lefts:    leftsByQ[q.ID],
			Rights:   rightsByQ[q.ID],
		})
	}
	return payload, nil
}

// shuffled returns a Fisher-Yates permutation without touching the cached
// slice.
func (s *EnrollmentService) shuffled(items []model.MatchingItem) []model.MatchingItem {
	if len(items) == 0 {
		return items
	}
	out := make([]model.MatchingItem, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
