package models

import "time"

// TaskType separates personal tasks from tasks assigned to a whole class.
type TaskType string

const (
	// TaskTypeIndividual is a task a student created for themselves.
	TaskTypeIndividual TaskType = "individual"
	// TaskTypeClass is a task a teacher assigned to a class.
	TaskTypeClass TaskType = "class"
)

// Task is a unit of work tracked per user through ProgressRecord rows.
type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:30;not null" json:"title"`
	Description  string     `gorm:"size:255;not null" json:"description"`
	Type         TaskType   `gorm:"size:16;not null;index" json:"type"`
	Subject      string     `gorm:"size:30;not null" json:"subject"`
	Category     string     `gorm:"size:30;not null" json:"category"`
	Deadline     time.Time  `gorm:"not null" json:"deadline"`
	Priority     *float64   `json:"priority"`
	ReminderTime *time.Time `json:"reminder_time"`
	ClassID      *uint      `gorm:"index" json:"class_id"`
	CreatedBy    uint       `gorm:"not null;index" json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName keeps the legacy singular table name.
func (Task) TableName() string {
	return "task"
}
