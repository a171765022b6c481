package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enrollFixture struct {
	store    *fakeStore
	enroll   *EnrollmentService
	room     *model.Room
	variant  uuid.UUID
	mc       model.Question
	options  []model.Option
	matching model.Question
	pairs    []model.MatchingPair
	open     model.Question
}

func newEnrollFixture(t *testing.T) *enrollFixture {
	t.Helper()
	store := newFakeStore()
	teacherID := uuid.New()
	test := &model.Test{ID: uuid.New(), Title: "Biology", OwnerID: teacherID, CreatedAt: time.Now()}

	mc, options := mcQuestion(2)
	matching, pairs := matchingQuestion(3)
	matching.OrderNum = 2
	open := model.Question{ID: uuid.New(), Type: model.QuestionTypeOpen, OrderNum: 3, Points: 4}
	variantID := store.addVariantTree(test, []model.Question{mc, matching, open}, options, pairs)

	room := &model.Room{
		ID:        uuid.New(),
		TestID:    test.ID,
		TeacherID: teacherID,
		Name:      "Lab",
		Status:    model.RoomStatusOpen,
		CreatedAt: time.Now(),
	}
	require.NoError(t, fakeRoomStore{store}.Create(context.Background(), room))

	enroll := NewEnrollmentService(
		fakeRoomStore{store},
		fakeTestStore{store},
		fakeQuestionStore{store},
		fakeEnrollmentStore{store},
		fakeAnswerStore{store},
		nil,
		zerolog.Nop(),
	)

	return &enrollFixture{
		store:    store,
		enroll:   enroll,
		room:     room,
		variant:  variantID,
		mc:       mc,
		options:  options,
		matching: matching,
		pairs:    pairs,
		open:     open,
	}
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestEnrollmentService_JoinIsIdempotent(t *testing.T) {
	fx := newEnrollFixture(t)
	studentID := uuid.New()

	first, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.variant, first.AssignedVariantID)

	second, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.AssignedVariantID, second.AssignedVariantID)
}

func TestEnrollmentService_JoinClosedRoom(t *testing.T) {
	fx := newEnrollFixture(t)
	_, err := fakeRoomStore{fx.store}.Close(context.Background(), fx.room.ID, time.Now())
	require.NoError(t, err)

	_, err = fx.enroll.Join(context.Background(), uuid.New(), fx.room.ID)
	assert.ErrorIs(t, err, ErrRoomClosed)
}

func TestEnrollmentService_JoinUnknownRoom(t *testing.T) {
	fx := newEnrollFixture(t)
	_, err := fx.enroll.Join(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnrollmentService_JoinNoVariants(t *testing.T) {
	store := newFakeStore()
	teacherID := uuid.New()
	test := &model.Test{ID: uuid.New(), OwnerID: teacherID}
	store.tests[test.ID] = test
	room := &model.Room{ID: uuid.New(), TestID: test.ID, TeacherID: teacherID, Status: model.RoomStatusOpen}
	require.NoError(t, fakeRoomStore{store}.Create(context.Background(), room))

	enroll := NewEnrollmentService(
		fakeRoomStore{store}, fakeTestStore{store}, fakeQuestionStore{store},
		fakeEnrollmentStore{store}, fakeAnswerStore{store}, nil, zerolog.Nop(),
	)

	_, err := enroll.Join(context.Background(), uuid.New(), room.ID)
	assert.ErrorIs(t, err, ErrNoVariants)
}

func TestEnrollmentService_VariantDistribution(t *testing.T) {
	store := newFakeStore()
	teacherID := uuid.New()
	test := &model.Test{ID: uuid.New(), OwnerID: teacherID}
	store.tests[test.ID] = test
	for i := 0; i < 3; i++ {
		store.variants[test.ID] = append(store.variants[test.ID], model.Variant{ID: uuid.New(), TestID: test.ID})
	}
	room := &model.Room{ID: uuid.New(), TestID: test.ID, TeacherID: teacherID, Status: model.RoomStatusOpen}
	require.NoError(t, fakeRoomStore{store}.Create(context.Background(), room))

	enroll := NewEnrollmentService(
		fakeRoomStore{store}, fakeTestStore{store}, fakeQuestionStore{store},
		fakeEnrollmentStore{store}, fakeAnswerStore{store}, nil, zerolog.Nop(),
	)

	counts := make(map[uuid.UUID]int)
	for i := 0; i < 300; i++ {
		e, err := enroll.Join(context.Background(), uuid.New(), room.ID)
		require.NoError(t, err)
		counts[e.AssignedVariantID]++
	}

	require.Len(t, counts, 3, "every variant should be assigned at this sample size")
	for id, n := range counts {
		assert.Greater(t, n, 50, "variant %s starved: %d of 300", id, n)
	}
}

func TestEnrollmentService_SubmitAndResubmit(t *testing.T) {
	fx := newEnrollFixture(t)
	studentID := uuid.New()
	_, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	first := &model.SubmitAnswersRequest{Answers: []model.SubmittedAnswer{
		{QuestionID: fx.mc.ID, Value: rawJSON(t, fx.options[1].ID.String())},
	}}
	e, err := fx.enroll.Submit(context.Background(), studentID, fx.room.ID, first)
	require.NoError(t, err)
	assert.NotNil(t, e.SubmittedAt)

	// Resubmission replaces the whole set and starts ungraded.
	second := &model.SubmitAnswersRequest{Answers: []model.SubmittedAnswer{
		{QuestionID: fx.mc.ID, Value: rawJSON(t, fx.options[0].ID.String())},
		{QuestionID: fx.open.ID, Value: rawJSON(t, "osmosis")},
	}}
	e, err = fx.enroll.Submit(context.Background(), studentID, fx.room.ID, second)
	require.NoError(t, err)

	stored, err := fakeAnswerStore{fx.store}.ListByEnrollment(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, a := range stored {
		assert.Nil(t, a.IsCorrect)
	}
}

func TestEnrollmentService_SubmitAfterClose(t *testing.T) {
	fx := newEnrollFixture(t)
	studentID := uuid.New()
	_, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	_, err = fakeRoomStore{fx.store}.Close(context.Background(), fx.room.ID, time.Now())
	require.NoError(t, err)

	req := &model.SubmitAnswersRequest{Answers: []model.SubmittedAnswer{
		{QuestionID: fx.mc.ID, Value: rawJSON(t, fx.options[0].ID.String())},
	}}
	_, err = fx.enroll.Submit(context.Background(), studentID, fx.room.ID, req)
	assert.ErrorIs(t, err, ErrRoomClosed)
}

// staleRoomStore reports every room as OPEN regardless of stored state,
// standing in for a status read that a concurrent close outruns.
type staleRoomStore struct{ fakeRoomStore }

func (s staleRoomStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	room, err := s.fakeRoomStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Status = model.RoomStatusOpen
	return room, nil
}

func TestEnrollmentService_SubmitRacingClose(t *testing.T) {
	fx := newEnrollFixture(t)
	studentID := uuid.New()
	_, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	enroll := NewEnrollmentService(
		staleRoomStore{fakeRoomStore{fx.store}},
		fakeTestStore{fx.store}, fakeQuestionStore{fx.store},
		fakeEnrollmentStore{fx.store}, fakeAnswerStore{fx.store}, nil, zerolog.Nop(),
	)

	_, err = fakeRoomStore{fx.store}.Close(context.Background(), fx.room.ID, time.Now())
	require.NoError(t, err)

	// The service's own status check sees the stale OPEN, so only the
	// store-level re-check under lock can refuse the write.
	req := &model.SubmitAnswersRequest{Answers: []model.SubmittedAnswer{
		{QuestionID: fx.mc.ID, Value: rawJSON(t, fx.options[0].ID.String())},
	}}
	_, err = enroll.Submit(context.Background(), studentID, fx.room.ID, req)
	assert.ErrorIs(t, err, ErrRoomClosed)

	// Nothing landed in the closed room's ledger.
	e, err := fakeEnrollmentStore{fx.store}.GetByRoomAndStudent(context.Background(), fx.room.ID, studentID)
	require.NoError(t, err)
	stored, err := fakeAnswerStore{fx.store}.ListByEnrollment(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Nil(t, e.SubmittedAt)
}

func TestEnrollmentService_SubmitWithoutJoin(t *testing.T) {
	fx := newEnrollFixture(t)

	req := &model.SubmitAnswersRequest{Answers: nil}
	_, err := fx.enroll.Submit(context.Background(), uuid.New(), fx.room.ID, req)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestEnrollmentService_SubmitForeignQuestion(t *testing.T) {
	fx := newEnrollFixture(t)
	studentID := uuid.New()
	_, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	req := &model.SubmitAnswersRequest{Answers: []model.SubmittedAnswer{
		{QuestionID: uuid.New(), Value: rawJSON(t, fx.options[0].ID.String())},
	}}
	_, err = fx.enroll.Submit(context.Background(), studentID, fx.room.ID, req)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestEnrollmentService_SubmitWrongShape(t *testing.T) {
	fx := newEnrollFixture(t)
	studentID := uuid.New()
	_, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	// A matching payload on a multiple choice question.
	req := &model.SubmitAnswersRequest{Answers: []model.SubmittedAnswer{
		{QuestionID: fx.mc.ID, Value: rawJSON(t, []model.MatchSelection{{LeftID: uuid.New(), RightID: uuid.New()}})},
	}}
	_, err = fx.enroll.Submit(context.Background(), studentID, fx.room.ID, req)
	assert.ErrorIs(t, err, model.ErrAnswerShape)
}

func TestEnrollmentService_PaperStripsAnswerKey(t *testing.T) {
	fx := newEnrollFixture(t)
	studentID := uuid.New()
	_, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	paper, err := fx.enroll.GetPaper(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)
	require.Len(t, paper.Questions, 3)

	var mc, matching model.QuestionForStudent
	for _, q := range paper.Questions {
		switch q.Type {
		case model.QuestionTypeMultipleChoice:
			mc = q
		case model.QuestionTypeMatching:
			matching = q
		}
	}

	// Options come through without correctness; the wire type has no
	// is_correct field at all.
	require.Len(t, mc.Options, 2)
	raw := rawJSON(t, mc.Options[0])
	assert.NotContains(t, string(raw), "is_correct")

	// Matching exposes both columns, rights as a permutation of the pairs.
	assert.Len(t, matching.Lefts, len(fx.pairs))
	require.Len(t, matching.Rights, len(fx.pairs))
	seen := make(map[uuid.UUID]bool)
	for _, r := range matching.Rights {
		seen[r.ID] = true
	}
	for _, p := range fx.pairs {
		assert.True(t, seen[p.ID], "right side for pair %s missing", p.ID)
	}
}

func TestEnrollmentService_PaperShufflesRights(t *testing.T) {
	fx := newEnrollFixture(t)
	studentID := uuid.New()
	_, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	// Force a deterministic permutation: always swap with index 0.
	fx.enroll.intn = func(n int) int { return 0 }

	paper, err := fx.enroll.GetPaper(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	for _, q := range paper.Questions {
		if q.Type != model.QuestionTypeMatching {
			continue
		}
		require.Len(t, q.Rights, 2)
		assert.Equal(t, fx.pairs[1].ID, q.Rights[0].ID)
		assert.Equal(t, fx.pairs[0].ID, q.Rights[1].ID)
	}
}

func TestEnrollmentService_PaperIncludesSavedAnswers(t *testing.T) {
	fx := newEnrollFixture(t)
	studentID := uuid.New()
	_, err := fx.enroll.Join(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)

	req := &model.SubmitAnswersRequest{Answers: []model.SubmittedAnswer{
		{QuestionID: fx.open.ID, Value: rawJSON(t, "photosynthesis")},
	}}
	_, err = fx.enroll.Submit(context.Background(), studentID, fx.room.ID, req)
	require.NoError(t, err)

	paper, err := fx.enroll.GetPaper(context.Background(), studentID, fx.room.ID)
	require.NoError(t, err)
	require.Len(t, paper.Answers, 1)
	assert.Equal(t, fx.open.ID, paper.Answers[0].QuestionID)
}

func TestEnrollmentService_PaperWithoutJoin(t *testing.T) {
	fx := newEnrollFixture(t)
	_, err := fx.enroll.GetPaper(context.Background(), uuid.New(), fx.room.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}
