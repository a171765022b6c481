package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
)

// Narrow store contracts the services depend on. The repository package
// satisfies all of them against PostgreSQL; tests substitute in-memory
// fakes. Stores return repository.ErrNotFound for missing rows.

// UserStore is the account storage contract.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByNameAndRole(ctx context.Context, name string, role model.Role) (*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TestStore is the test catalog storage contract.
type TestStore interface {
	CreateTree(ctx context.Context, detail *model.TestDetail) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Test, error)
	ListVariants(ctx context.Context, testID uuid.UUID) ([]model.Variant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionStore reads a variant's question tree.
type QuestionStore interface {
	ListByVariant(ctx context.Context, variantID uuid.UUID) ([]model.Question, error)
	ListOptionsForVariant(ctx context.Context, variantID uuid.UUID) ([]model.Option, error)
	ListPairsForVariant(ctx context.Context, variantID uuid.UUID) ([]model.MatchingPair, error)
}

// RoomStore is the room storage contract. Close performs the conditional
// OPEN → CLOSED transition and reports whether this call won it.
type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.RoomWithTest, error)
	Close(ctx context.Context, id uuid.UUID, closedAt time.Time) (bool, error)
}

// EnrollmentStore is the enrollment storage contract. FindOrCreate must be
// atomic per (room, student).
type EnrollmentStore interface {
	FindOrCreate(ctx context.Context, e *model.Enrollment) (created bool, err error)
	GetByRoomAndStudent(ctx context.Context, roomID, studentID uuid.UUID) (*model.Enrollment, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]model.Enrollment, error)
	SetScore(ctx context.Context, enrollmentID uuid.UUID, score int) error
}

// AnswerStore is the answer ledger storage contract. Replace must be
// atomic for the enrollment and must return repository.ErrRoomClosed
// when the enrollment's room is no longer OPEN at write time.
type AnswerStore interface {
	Replace(ctx context.Context, enrollmentID uuid.UUID, answers []model.Answer, submittedAt time.Time) error
	ListByEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]model.Answer, error)
	SetCorrectness(ctx context.Context, answerID uuid.UUID, correct bool) error
}

// ResultStore is the graded result storage contract. Create must be
// write-once per enrollment.
type ResultStore interface {
	Create(ctx context.Context, res *model.Result) error
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]model.ResultWithStudent, error)
	GetByRoomAndStudent(ctx context.Context, roomID, studentID uuid.UUID) (*model.Result, error)
}

// PayloadCache caches student-facing variant payloads. Implementations
// must treat the cache as best-effort: a miss or error falls back to the
// store.
type PayloadCache interface {
	GetVariantPayload(ctx context.Context, variantID uuid.UUID) (*model.VariantPayload, error)
	SetVariantPayload(ctx context.Context, payload *model.VariantPayload) error
}
