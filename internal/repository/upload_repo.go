package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/schedmate-api/internal/models"
)

// UploadRepository keeps one record per object pushed to the blob store.
type UploadRepository interface {
	Create(ctx context.Context, record *models.UploadRecord) error
	// FindDuplicate returns the newest record with the same owner, purpose
	// and content checksum, or nil when the content is new.
	FindDuplicate(ctx context.Context, userID uint, purpose, checksum string) (*models.UploadRecord, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository constructs a repository for upload records.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, record *models.UploadRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *uploadRepository) FindDuplicate(ctx context.Context, userID uint, purpose, checksum string) (*models.UploadRecord, error) {
	var record models.UploadRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND checksum = ?", userID, purpose, checksum).
		Order("id DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
