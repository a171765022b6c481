package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// Store-level errors shared by all repositories.
var (
	ErrNotFound   = errors.New("row not found")
	ErrConflict   = errors.New("row already exists")
	ErrRoomClosed = errors.New("room is closed")
)

// wrapNotFound converts pgx.ErrNoRows into ErrNotFound so callers never
// depend on the driver.
func wrapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
