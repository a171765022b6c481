package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/quizora/testroom-backend/internal/repository"
)

// In-memory fakes backing the service tests. fakeStore holds the shared
// state; the per-contract adapter types satisfy the store interfaces the
// way the repository package does, including repository.ErrNotFound for
// missing rows and the atomicity of FindOrCreate and result Create.

type fakeStore struct {
	mu sync.Mutex

	users       map[uuid.UUID]*model.User
	tests       map[uuid.UUID]*model.Test
	variants    map[uuid.UUID][]model.Variant // keyed by test id
	questions   map[uuid.UUID][]model.Question
	options     map[uuid.UUID][]model.Option       // keyed by variant id
	pairs       map[uuid.UUID][]model.MatchingPair // keyed by variant id
	rooms       map[uuid.UUID]*model.Room
	enrollments map[uuid.UUID]*model.Enrollment
	answers     map[uuid.UUID][]model.Answer // keyed by enrollment id
	results     map[uuid.UUID]*model.Result  // keyed by enrollment id

	// Error injection for failure-path tests.
	failListAnswers     map[uuid.UUID]error
	failListEnrollments map[uuid.UUID]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:               make(map[uuid.UUID]*model.User),
		tests:               make(map[uuid.UUID]*model.Test),
		variants:            make(map[uuid.UUID][]model.Variant),
		questions:           make(map[uuid.UUID][]model.Question),
		options:             make(map[uuid.UUID][]model.Option),
		pairs:               make(map[uuid.UUID][]model.MatchingPair),
		rooms:               make(map[uuid.UUID]*model.Room),
		enrollments:         make(map[uuid.UUID]*model.Enrollment),
		answers:             make(map[uuid.UUID][]model.Answer),
		results:             make(map[uuid.UUID]*model.Result),
		failListAnswers:     make(map[uuid.UUID]error),
		failListEnrollments: make(map[uuid.UUID]error),
	}
}

// addVariantTree seeds a test with one variant holding the given question
// tree, returning the variant id.
func (f *fakeStore) addVariantTree(test *model.Test, questions []model.Question, options []model.Option, pairs []model.MatchingPair) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tests[test.ID] = test
	v := model.Variant{ID: uuid.New(), TestID: test.ID, Name: "A", CreatedAt: time.Now()}
	f.variants[test.ID] = append(f.variants[test.ID], v)
	f.questions[v.ID] = questions
	f.options[v.ID] = options
	f.pairs[v.ID] = pairs
	return v.ID
}

// ─── TestStore ──────────────────────────────────────────────────────────

type fakeTestStore struct{ s *fakeStore }

func (f fakeTestStore) CreateTree(ctx context.Context, detail *model.TestDetail) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t := detail.Test
	f.s.tests[t.ID] = &t
	for _, v := range detail.Variants {
		f.s.variants[t.ID] = append(f.s.variants[t.ID], v.Variant)
		for _, q := range v.Questions {
			f.s.questions[v.ID] = append(f.s.questions[v.ID], q.Question)
			f.s.options[v.ID] = append(f.s.options[v.ID], q.Options...)
			f.s.pairs[v.ID] = append(f.s.pairs[v.ID], q.Pairs...)
		}
	}
	return nil
}

func (f fakeTestStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.tests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (f fakeTestStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Test, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []model.Test
	for _, t := range f.s.tests {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f fakeTestStore) ListVariants(ctx context.Context, testID uuid.UUID) ([]model.Variant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]model.Variant(nil), f.s.variants[testID]...), nil
}

func (f fakeTestStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.tests, id)
	return nil
}

// ─── QuestionStore ──────────────────────────────────────────────────────

type fakeQuestionStore struct{ s *fakeStore }

func (f fakeQuestionStore) ListByVariant(ctx context.Context, variantID uuid.UUID) ([]model.Question, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]model.Question(nil), f.s.questions[variantID]...), nil
}

func (f fakeQuestionStore) ListOptionsForVariant(ctx context.Context, variantID uuid.UUID) ([]model.Option, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]model.Option(nil), f.s.options[variantID]...), nil
}

func (f fakeQuestionStore) ListPairsForVariant(ctx context.Context, variantID uuid.UUID) ([]model.MatchingPair, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return append([]model.MatchingPair(nil), f.s.pairs[variantID]...), nil
}

// ─── RoomStore ──────────────────────────────────────────────────────────

type fakeRoomStore struct{ s *fakeStore }

func (f fakeRoomStore) Create(ctx context.Context, room *model.Room) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	copied := *room
	f.s.rooms[room.ID] = &copied
	return nil
}

func (f fakeRoomStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f fakeRoomStore) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.RoomWithTest, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []model.RoomWithTest
	for _, r := range f.s.rooms {
		if r.TeacherID == teacherID {
			out = append(out, model.RoomWithTest{Room: *r})
		}
	}
	return out, nil
}

func (f fakeRoomStore) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.rooms[id]
	if !ok || r.Status != model.RoomStatusOpen {
		return false, nil
	}
	r.Status = model.RoomStatusClosed
	r.ClosedAt = &closedAt
	return true, nil
}

// ─── EnrollmentStore ────────────────────────────────────────────────────

type fakeEnrollmentStore struct{ s *fakeStore }

func (f fakeEnrollmentStore) FindOrCreate(ctx context.Context, e *model.Enrollment) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.enrollments {
		if existing.RoomID == e.RoomID && existing.StudentID == e.StudentID {
			*e = *existing
			return false, nil
		}
	}
	copied := *e
	f.s.enrollments[e.ID] = &copied
	return true, nil
}

func (f fakeEnrollmentStore) GetByRoomAndStudent(ctx context.Context, roomID, studentID uuid.UUID) (*model.Enrollment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, e := range f.s.enrollments {
		if e.RoomID == roomID && e.StudentID == studentID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f fakeEnrollmentStore) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]model.Enrollment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.failListEnrollments[roomID]; err != nil {
		return nil, err
	}
	var out []model.Enrollment
	for _, e := range f.s.enrollments {
		if e.RoomID == roomID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f fakeEnrollmentStore) SetScore(ctx context.Context, enrollmentID uuid.UUID, score int) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	e, ok := f.s.enrollments[enrollmentID]
	if !ok {
		return repository.ErrNotFound
	}
	e.Score = &score
	return nil
}

// ─── AnswerStore ────────────────────────────────────────────────────────

type fakeAnswerStore struct{ s *fakeStore }

func (f fakeAnswerStore) Replace(ctx context.Context, enrollmentID uuid.UUID, answers []model.Answer, submittedAt time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	e, ok := f.s.enrollments[enrollmentID]
	if !ok {
		return repository.ErrNotFound
	}
	if room, ok := f.s.rooms[e.RoomID]; !ok || room.Status != model.RoomStatusOpen {
		return repository.ErrRoomClosed
	}
	f.s.answers[enrollmentID] = append([]model.Answer(nil), answers...)
	e.SubmittedAt = &submittedAt
	return nil
}

func (f fakeAnswerStore) ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]model.Answer, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.failListAnswers[enrollmentID]; err != nil {
		return nil, err
	}
	return append([]model.Answer(nil), f.s.answers[enrollmentID]...), nil
}

func (f fakeAnswerStore) SetCorrectness(ctx context.Context, answerID uuid.UUID, correct bool) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, answers := range f.s.answers {
		for i := range answers {
			if answers[i].ID == answerID {
				c := correct
				answers[i].IsCorrect = &c
				return nil
			}
		}
	}
	return repository.ErrNotFound
}

// ─── ResultStore ────────────────────────────────────────────────────────

type fakeResultStore struct{ s *fakeStore }

func (f fakeResultStore) Create(ctx context.Context, res *model.Result) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, exists := f.s.results[res.EnrollmentID]; exists {
		return repository.ErrConflict
	}
	copied := *res
	f.s.results[res.EnrollmentID] = &copied
	return nil
}

func (f fakeResultStore) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]model.ResultWithStudent, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []model.ResultWithStudent
	for _, r := range f.s.results {
		if r.RoomID == roomID {
			item := model.ResultWithStudent{Result: *r}
			if u, ok := f.s.users[r.StudentID]; ok {
				item.Student = model.PublicProfile{ID: u.ID, Name: u.Name}
			}
			out = append(out, item)
		}
	}
	return out, nil
}

func (f fakeResultStore) GetByRoomAndStudent(ctx context.Context, roomID, studentID uuid.UUID) (*model.Result, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, r := range f.s.results {
		if r.RoomID == roomID && r.StudentID == studentID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}
