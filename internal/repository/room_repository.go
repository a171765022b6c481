package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizora/testroom-backend/internal/model"
)

// RoomRepository handles room data access.
type RoomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

// Create inserts a new room in OPEN state.
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO rooms (id, test_id, teacher_id, name, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		room.ID, room.TestID, room.TeacherID, room.Name, model.RoomStatusOpen,
	).Scan(&room.CreatedAt)
}

// GetByID retrieves a room by id.
func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	room := &model.Room{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, teacher_id, name, status, created_at, closed_at
		 FROM rooms WHERE id = $1`, id,
	).Scan(&room.ID, &room.TestID, &room.TeacherID, &room.Name, &room.Status, &room.CreatedAt, &room.ClosedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return room, nil
}

// ListByTeacher retrieves a teacher's rooms with the referenced test and
// the number of enrolled students, newest first.
func (r *RoomRepository) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]model.RoomWithTest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.test_id, r.teacher_id, r.name, r.status, r.created_at, r.closed_at,
		        t.id, t.title, t.description, t.owner_id, t.created_at,
		        (SELECT COUNT(*) FROM enrollments e WHERE e.room_id = r.id)
		 FROM rooms r
		 JOIN tests t ON r.test_id = t.id
		 WHERE r.teacher_id = $1
		 ORDER BY r.created_at DESC`, teacherID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []model.RoomWithTest
	for rows.Next() {
		var rw model.RoomWithTest
		var t model.Test
		if err := rows.Scan(
			&rw.ID, &rw.TestID, &rw.TeacherID, &rw.Name, &rw.Status, &rw.CreatedAt, &rw.ClosedAt,
			&t.ID, &t.Title, &t.Description, &t.OwnerID, &t.CreatedAt,
			&rw.StudentCount,
		); err != nil {
			return nil, err
		}
		rw.Test = &t
		rooms = append(rooms, rw)
	}
	return rooms, rows.Err()
}

// Close transitions a room OPEN → CLOSED. The conditional UPDATE makes the
// transition race-free: only one caller ever observes closed == true.
func (r *RoomRepository) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rooms SET status = $1, closed_at = $2
		 WHERE id = $3 AND status = $4`,
		model.RoomStatusClosed, closedAt, id, model.RoomStatusOpen,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
