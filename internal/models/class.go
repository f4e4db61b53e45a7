package models

import "time"

// Class groups users that share class-wide tasks.
type Class struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	CodeTeacher string    `gorm:"size:32;uniqueIndex;not null" json:"code_teacher"`
	CodeStudent string    `gorm:"size:32;uniqueIndex;not null" json:"code_student"`
	CreatedBy   *uint     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the legacy singular table name.
func (Class) TableName() string {
	return "class"
}

// Enrollment links a user to a class.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_class" json:"user_id"`
	ClassID   uint      `gorm:"not null;uniqueIndex:idx_user_class;index" json:"class_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Class     Class     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// TableName keeps the legacy link table name.
func (Enrollment) TableName() string {
	return "user_class"
}
