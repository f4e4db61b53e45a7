package models

import (
	"strconv"
	"time"
)

// ProgressState is the per-user state of a task.
type ProgressState int

const (
	ProgressNotStarted ProgressState = 0
	ProgressInProgress ProgressState = 1
	ProgressDone       ProgressState = 2
)

// ParseProgressState accepts "0", "1" or "2".
func ParseProgressState(value string) (ProgressState, bool) {
	switch value {
	case "0":
		return ProgressNotStarted, true
	case "1":
		return ProgressInProgress, true
	case "2":
		return ProgressDone, true
	default:
		return 0, false
	}
}

func (p ProgressState) String() string {
	return strconv.Itoa(int(p))
}

// ProgressRecord stores one user's progress on one task.
type ProgressRecord struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	TaskID      uint          `gorm:"not null;uniqueIndex:idx_task_user" json:"task_id"`
	UserID      uint          `gorm:"not null;uniqueIndex:idx_task_user;index" json:"user_id"`
	Progress    ProgressState `gorm:"not null;default:0" json:"progress"`
	StartTime   *time.Time    `json:"start_time"`
	EndTime     *time.Time    `json:"end_time"`
	EvidenceURL *string       `gorm:"size:512" json:"evidence_url"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Task        Task          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User        User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// TableName keeps the legacy link table name.
func (ProgressRecord) TableName() string {
	return "task_user"
}
