package dto

import (
	"time"

	"github.com/noah-isme/schedmate-api/internal/models"
)

// ProgressUpdateRequest carries a progress transition; the evidence file
// travels separately as multipart content.
type ProgressUpdateRequest struct {
	Progress  string  `form:"progress" json:"progress" validate:"required,oneof=0 1 2"`
	StartTime *string `form:"start_time" json:"start_time" validate:"omitempty"`
	EndTime   *string `form:"end_time" json:"end_time" validate:"omitempty"`
}

// ProgressResponse is a user's progress on a task.
type ProgressResponse struct {
	TaskID      uint       `json:"task_id"`
	UserID      uint       `json:"user_id"`
	Progress    string     `json:"progress"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	EvidenceURL *string    `json:"evidence_url"`
}

// NewProgressResponse converts a progress record into a DTO.
func NewProgressResponse(record models.ProgressRecord) ProgressResponse {
	return ProgressResponse{
		TaskID:      record.TaskID,
		UserID:      record.UserID,
		Progress:    record.Progress.String(),
		StartTime:   record.StartTime,
		EndTime:     record.EndTime,
		EvidenceURL: record.EvidenceURL,
	}
}
