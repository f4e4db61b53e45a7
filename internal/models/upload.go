package models

import "time"

// Upload purposes stored on UploadRecord.
const (
	UploadPurposeEvidence = "evidence"
	UploadPurposePhoto    = "photo"
)

// UploadRecord stores metadata about files pushed to the blob store.
type UploadRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Purpose   string    `gorm:"size:16;not null" json:"purpose"`
	ObjectKey string    `gorm:"size:255;not null" json:"object_key"`
	URL       string    `gorm:"size:512;not null" json:"url"`
	MimeType  string    `gorm:"size:128;not null" json:"mime_type"`
	SizeBytes int64     `gorm:"not null" json:"size_bytes"`
	Checksum  string    `gorm:"size:128;index" json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}
