package dto

import (
	"time"

	"github.com/noah-isme/schedmate-api/internal/models"
)

// TaskCreateRequest is the payload for creating a task. Any type sent by the
// client is ignored; the type follows the creator's role.
type TaskCreateRequest struct {
	Title        string   `json:"title" validate:"required,max=30"`
	Description  string   `json:"description" validate:"required,max=255"`
	Subject      string   `json:"subject" validate:"required,max=30"`
	Category     string   `json:"category" validate:"required,max=30"`
	Deadline     string   `json:"deadline" validate:"required"`
	Priority     *float64 `json:"priority" validate:"omitempty,gte=0"`
	ReminderTime *string  `json:"reminder_time" validate:"omitempty"`
	ClassID      *uint    `json:"class_id" validate:"omitempty,gt=0"`
	Type         string   `json:"type,omitempty"`
}

// TaskUpdateRequest is the payload for editing a task.
type TaskUpdateRequest struct {
	Title        string  `json:"title" validate:"required,max=30"`
	Description  string  `json:"description" validate:"required,max=255"`
	Subject      string  `json:"subject" validate:"required,max=30"`
	Category     string  `json:"category" validate:"required,max=30"`
	Deadline     string  `json:"deadline" validate:"required"`
	ReminderTime *string `json:"reminder_time" validate:"omitempty"`
}

// TaskResponse is the serialized representation of a task.
type TaskResponse struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	Subject      string     `json:"subject"`
	Category     string     `json:"category"`
	Deadline     time.Time  `json:"deadline"`
	Priority     *float64   `json:"priority"`
	ReminderTime *time.Time `json:"reminder_time"`
	ClassID      *uint      `json:"class_id"`
	CreatedBy    uint       `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskWithProgress is a task joined with the caller's own progress.
type TaskWithProgress struct {
	TaskResponse
	Progress string `json:"progress"`
}

// TaskDetailResponse is a task with the caller's progress and the users who completed it.
type TaskDetailResponse struct {
	Task       TaskResponse     `json:"task"`
	MyProgress ProgressResponse `json:"my_progress"`
	Completed  []CompletionItem `json:"completed_by"`
}

// CompletionItem describes one user that finished a task.
type CompletionItem struct {
	UserID      uint       `json:"user_id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	PhotoURL    *string    `json:"photo_url"`
	EvidenceURL *string    `json:"evidence_url"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

// NewTaskResponse converts a model into a DTO.
func NewTaskResponse(model models.Task) TaskResponse {
	return TaskResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		Type:         string(model.Type),
		Subject:      model.Subject,
		Category:     model.Category,
		Deadline:     model.Deadline,
		Priority:     model.Priority,
		ReminderTime: model.ReminderTime,
		ClassID:      model.ClassID,
		CreatedBy:    model.CreatedBy,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
