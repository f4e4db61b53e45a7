package dto

import (
	"time"

	"github.com/noah-isme/schedmate-api/internal/models"
)

// JoinClassRequest carries a teacher or student join code.
type JoinClassRequest struct {
	Code string `json:"code" validate:"required"`
}

// JoinClassResponse identifies the class that was joined.
type JoinClassResponse struct {
	ClassID   uint   `json:"class_id"`
	ClassName string `json:"class_name"`
}

// ClassCreateRequest is the payload for creating a class.
type ClassCreateRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ClassResponse describes a class. Join codes are only filled for teachers.
type ClassResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	CodeTeacher string     `json:"code_teacher,omitempty"`
	CodeStudent string     `json:"code_student,omitempty"`
	JoinedAt    *time.Time `json:"joined_at,omitempty"`
}

// NewClassResponse converts a class model, exposing the join codes when requested.
func NewClassResponse(class models.Class, withCodes bool) ClassResponse {
	response := ClassResponse{
		ID:   class.ID,
		Name: class.Name,
	}
	if withCodes {
		response.CodeTeacher = class.CodeTeacher
		response.CodeStudent = class.CodeStudent
	}
	return response
}
