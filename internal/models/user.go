package models

import (
	"strings"
	"time"
)

// Role identifies what a user may do inside a class.
type Role string

const (
	// RoleTeacher creates class-wide tasks and owns the teacher join code.
	RoleTeacher Role = "teacher"
	// RoleStudent tracks progress and creates personal tasks.
	RoleStudent Role = "student"
)

// ParseRole normalises a role string, accepting the legacy guru/murid names.
func ParseRole(value string) Role {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "teacher", "guru":
		return RoleTeacher
	case "student", "murid":
		return RoleStudent
	default:
		return Role(strings.ToLower(strings.TrimSpace(value)))
	}
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// User is a registered account.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:50;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null" json:"role"`
	PhotoURL     *string   `gorm:"size:512" json:"photo_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
