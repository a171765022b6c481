package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates account roles.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// User represents any account on the platform.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicProfile is the credential-free view of a user exposed to other users.
type PublicProfile struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SignupRequest is the payload for account self-registration.
type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     Role   `json:"role" binding:"omitempty,oneof=STUDENT TEACHER"`
}

// LoginRequest is the payload for email/password authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RoomLoginRequest is the payload for name-only student login from a room
// join link. The account is provisioned on first use.
type RoomLoginRequest struct {
	Name   string    `json:"name" binding:"required,min=2,max=100"`
	RoomID uuid.UUID `json:"room_id" binding:"required"`
}

// AuthResponse is returned after successful authentication.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CreateTeacherRequest is the admin payload for creating a teacher account.
type CreateTeacherRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}
