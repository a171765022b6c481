package service

import (
	"math"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
)

// VariantKey is the full answer key of one variant, indexed for grading.
type VariantKey struct {
	Questions []model.Question
	Options   map[uuid.UUID][]model.Option
	Pairs     map[uuid.UUID][]model.MatchingPair
}

// BuildVariantKey indexes a variant's flat question tree by question id.
func BuildVariantKey(questions []model.Question, options []model.Option, pairs []model.MatchingPair) *VariantKey {
	key := &VariantKey{
		Questions: questions,
		Options:   make(map[uuid.UUID][]model.Option),
		Pairs:     make(map[uuid.UUID][]model.MatchingPair),
	}
	for _, o := range options {
		key.Options[o.QuestionID] = append(key.Options[o.QuestionID], o)
	}
	for _, p := range pairs {
		key.Pairs[p.QuestionID] = append(key.Pairs[p.QuestionID], p)
	}
	return key
}

// VariantScore is the graded outcome of one enrollment's answer set.
// Verdicts holds the per-answer correctness keyed by answer id; questions
// left unanswered have no verdict but still count toward TotalPoints.
type VariantScore struct {
	Score       int
	TotalPoints int
	Percentage  float64
	Verdicts    map[uuid.UUID]bool
}

// GradeVariant scores a full answer set against the variant key.
// TotalPoints sums every question's points whether answered or not, so
// skipping a question can never raise the percentage. OPEN questions are
// never auto-graded and contribute only to TotalPoints.
func GradeVariant(key *VariantKey, answers []model.Answer) *VariantScore {
	byQuestion := make(map[uuid.UUID]*model.Answer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	result := &VariantScore{Verdicts: make(map[uuid.UUID]bool)}
	for _, q := range key.Questions {
		result.TotalPoints += q.Points

		ans, ok := byQuestion[q.ID]
		if !ok {
			continue
		}
		if q.Type == model.QuestionTypeOpen {
			continue
		}

		correct := scoreAnswer(key, &q, ans)
		result.Verdicts[ans.ID] = correct
		if correct {
			result.Score += q.Points
		}
	}

	if result.TotalPoints > 0 {
		raw := float64(result.Score) / float64(result.TotalPoints) * 100
		result.Percentage = math.Round(raw*100) / 100
	}
	return result
}

func scoreAnswer(key *VariantKey, q *model.Question, ans *model.Answer) bool {
	switch q.Type {
	case model.QuestionTypeMultipleChoice:
		return scoreMultipleChoice(key.Options[q.ID], ans)
	case model.QuestionTypeMatching:
		return scoreMatching(key.Pairs[q.ID], ans)
	default:
		return false
	}
}

// scoreMultipleChoice is correct iff the selected id resolves to one of
// this question's own options and that option is marked correct. An id
// pointing anywhere else grades as incorrect, not as an error.
func scoreMultipleChoice(options []model.Option, ans *model.Answer) bool {
	selected, err := ans.OptionID()
	if err != nil {
		return false
	}
	for _, o := range options {
		if o.ID == selected {
			return o.IsCorrect
		}
	}
	return false
}

// scoreMatching is all-or-nothing: every pair must be mapped to its own
// id, with no extra, missing, or duplicate mappings.
func scoreMatching(pairs []model.MatchingPair, ans *model.Answer) bool {
	sels, err := ans.Matches()
	if err != nil {
		return false
	}
	if len(sels) != len(pairs) || len(pairs) == 0 {
		return false
	}

	mapped := make(map[uuid.UUID]uuid.UUID, len(sels))
	for _, s := range sels {
		if _, dup := mapped[s.LeftID]; dup {
			return false
		}
		mapped[s.LeftID] = s.RightID
	}
	for _, p := range pairs {
		if mapped[p.ID] != p.ID {
			return false
		}
	}
	return true
}
