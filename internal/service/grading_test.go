package service

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mcQuestion(points int) (model.Question, []model.Option) {
	q := model.Question{ID: uuid.New(), Type: model.QuestionTypeMultipleChoice, OrderNum: 1, Points: points}
	options := []model.Option{
		{ID: uuid.New(), QuestionID: q.ID, Text: "Paris", IsCorrect: true},
		{ID: uuid.New(), QuestionID: q.ID, Text: "London", IsCorrect: false},
	}
	return q, options
}

func matchingQuestion(points int) (model.Question, []model.MatchingPair) {
	q := model.Question{ID: uuid.New(), Type: model.QuestionTypeMatching, OrderNum: 1, Points: points}
	pairs := []model.MatchingPair{
		{ID: uuid.New(), QuestionID: q.ID, Left: "Cat", Right: "Meow"},
		{ID: uuid.New(), QuestionID: q.ID, Left: "Dog", Right: "Woof"},
	}
	return q, pairs
}

func optionAnswer(questionID, optionID uuid.UUID) model.Answer {
	raw, _ := json.Marshal(optionID.String())
	return model.Answer{ID: uuid.New(), QuestionID: questionID, Value: raw}
}

func matchAnswer(questionID uuid.UUID, sels []model.MatchSelection) model.Answer {
	raw, _ := json.Marshal(sels)
	return model.Answer{ID: uuid.New(), QuestionID: questionID, Value: raw}
}

func TestGradeVariant_CorrectMultipleChoice(t *testing.T) {
	q, options := mcQuestion(2)
	key := BuildVariantKey([]model.Question{q}, options, nil)

	ans := optionAnswer(q.ID, options[0].ID)
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 2, score.Score)
	assert.Equal(t, 2, score.TotalPoints)
	assert.Equal(t, float64(100), score.Percentage)
	assert.True(t, score.Verdicts[ans.ID])
}

func TestGradeVariant_WrongOption(t *testing.T) {
	q, options := mcQuestion(2)
	key := BuildVariantKey([]model.Question{q}, options, nil)

	ans := optionAnswer(q.ID, options[1].ID)
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 0, score.Score)
	assert.False(t, score.Verdicts[ans.ID])
}

func TestGradeVariant_UnresolvableOptionID(t *testing.T) {
	q, options := mcQuestion(1)
	key := BuildVariantKey([]model.Question{q}, options, nil)

	// An id that belongs to no option grades as incorrect, never errors.
	ans := optionAnswer(q.ID, uuid.New())
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 0, score.Score)
	assert.Equal(t, 1, score.TotalPoints)
	correct, graded := score.Verdicts[ans.ID]
	assert.True(t, graded)
	assert.False(t, correct)
}

func TestGradeVariant_MalformedOptionValue(t *testing.T) {
	q, options := mcQuestion(1)
	key := BuildVariantKey([]model.Question{q}, options, nil)

	ans := model.Answer{ID: uuid.New(), QuestionID: q.ID, Value: json.RawMessage(`{"not":"a string"}`)}
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 0, score.Score)
	assert.False(t, score.Verdicts[ans.ID])
}

func TestGradeVariant_SwappedMatchingIsZero(t *testing.T) {
	q, pairs := matchingQuestion(3)
	key := BuildVariantKey([]model.Question{q}, nil, pairs)

	ans := matchAnswer(q.ID, []model.MatchSelection{
		{LeftID: pairs[0].ID, RightID: pairs[1].ID},
		{LeftID: pairs[1].ID, RightID: pairs[0].ID},
	})
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 0, score.Score)
	assert.False(t, score.Verdicts[ans.ID])
}

func TestGradeVariant_CompleteMatchingIsFullCredit(t *testing.T) {
	q, pairs := matchingQuestion(3)
	key := BuildVariantKey([]model.Question{q}, nil, pairs)

	ans := matchAnswer(q.ID, []model.MatchSelection{
		{LeftID: pairs[0].ID, RightID: pairs[0].ID},
		{LeftID: pairs[1].ID, RightID: pairs[1].ID},
	})
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 3, score.Score)
	assert.True(t, score.Verdicts[ans.ID])
}

func TestGradeVariant_PartialMatchingIsZero(t *testing.T) {
	q, pairs := matchingQuestion(2)
	key := BuildVariantKey([]model.Question{q}, nil, pairs)

	// One pair mapped correctly, the other missing. All-or-nothing.
	ans := matchAnswer(q.ID, []model.MatchSelection{
		{LeftID: pairs[0].ID, RightID: pairs[0].ID},
	})
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 0, score.Score)
	assert.False(t, score.Verdicts[ans.ID])
}

func TestGradeVariant_ExtraMatchingMappingIsZero(t *testing.T) {
	q, pairs := matchingQuestion(2)
	key := BuildVariantKey([]model.Question{q}, nil, pairs)

	ans := matchAnswer(q.ID, []model.MatchSelection{
		{LeftID: pairs[0].ID, RightID: pairs[0].ID},
		{LeftID: pairs[1].ID, RightID: pairs[1].ID},
		{LeftID: uuid.New(), RightID: pairs[0].ID},
	})
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 0, score.Score)
	assert.False(t, score.Verdicts[ans.ID])
}

func TestGradeVariant_DuplicateLeftIsZero(t *testing.T) {
	q, pairs := matchingQuestion(2)
	key := BuildVariantKey([]model.Question{q}, nil, pairs)

	ans := matchAnswer(q.ID, []model.MatchSelection{
		{LeftID: pairs[0].ID, RightID: pairs[0].ID},
		{LeftID: pairs[0].ID, RightID: pairs[1].ID},
	})
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 0, score.Score)
	assert.False(t, score.Verdicts[ans.ID])
}

func TestGradeVariant_OpenNeverAutoGraded(t *testing.T) {
	q := model.Question{ID: uuid.New(), Type: model.QuestionTypeOpen, OrderNum: 1, Points: 5}
	key := BuildVariantKey([]model.Question{q}, nil, nil)

	raw, _ := json.Marshal("the mitochondria is the powerhouse of the cell")
	ans := model.Answer{ID: uuid.New(), QuestionID: q.ID, Value: raw}
	score := GradeVariant(key, []model.Answer{ans})

	assert.Equal(t, 0, score.Score)
	assert.Equal(t, 5, score.TotalPoints)
	_, graded := score.Verdicts[ans.ID]
	assert.False(t, graded, "OPEN answers must keep a null verdict")
}

func TestGradeVariant_UnansweredStillCountsTotal(t *testing.T) {
	q1, options := mcQuestion(2)
	q2, pairs := matchingQuestion(3)
	q3 := model.Question{ID: uuid.New(), Type: model.QuestionTypeOpen, OrderNum: 3, Points: 4}
	key := BuildVariantKey([]model.Question{q1, q2, q3}, options, pairs)

	score := GradeVariant(key, nil)

	assert.Equal(t, 0, score.Score)
	assert.Equal(t, 9, score.TotalPoints)
	assert.Equal(t, float64(0), score.Percentage)
	assert.Empty(t, score.Verdicts)
}

func TestGradeVariant_PercentageRounding(t *testing.T) {
	// 1 of 3 single-point questions correct: 33.333...% rounds to 33.33.
	var questions []model.Question
	var options []model.Option
	for i := 0; i < 3; i++ {
		q, opts := mcQuestion(1)
		q.OrderNum = i + 1
		questions = append(questions, q)
		options = append(options, opts...)
	}
	key := BuildVariantKey(questions, options, nil)

	correct := optionAnswer(questions[0].ID, options[0].ID)
	score := GradeVariant(key, []model.Answer{correct})

	require.Equal(t, 1, score.Score)
	assert.Equal(t, 33.33, score.Percentage)
}

func TestGradeVariant_EmptyVariant(t *testing.T) {
	key := BuildVariantKey(nil, nil, nil)
	score := GradeVariant(key, nil)

	assert.Equal(t, 0, score.TotalPoints)
	assert.Equal(t, float64(0), score.Percentage, "zero total must not divide by zero")
}

func TestGradeVariant_MixedVariant(t *testing.T) {
	q1, options := mcQuestion(2)
	q2, pairs := matchingQuestion(3)
	q2.OrderNum = 2
	key := BuildVariantKey([]model.Question{q1, q2}, options, pairs)

	answers := []model.Answer{
		optionAnswer(q1.ID, options[0].ID),
		matchAnswer(q2.ID, []model.MatchSelection{
			{LeftID: pairs[0].ID, RightID: pairs[1].ID},
			{LeftID: pairs[1].ID, RightID: pairs[0].ID},
		}),
	}
	score := GradeVariant(key, answers)

	assert.Equal(t, 2, score.Score)
	assert.Equal(t, 5, score.TotalPoints)
	assert.Equal(t, 40.0, score.Percentage)
}

func TestBuildVariantKey_GroupsByQuestion(t *testing.T) {
	q1, options1 := mcQuestion(1)
	q2, options2 := mcQuestion(1)
	key := BuildVariantKey([]model.Question{q1, q2}, append(options1, options2...), nil)

	assert.Len(t, key.Options[q1.ID], 2)
	assert.Len(t, key.Options[q2.ID], 2)

	// An answer selecting another question's correct option scores zero.
	ans := optionAnswer(q1.ID, options2[0].ID)
	score := GradeVariant(key, []model.Answer{ans})
	assert.Equal(t, 0, score.Score, fmt.Sprintf("option from %s must not count for %s", q2.ID, q1.ID))
}
