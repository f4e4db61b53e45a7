package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/schedmate-api/internal/models"
)

// EnrolledClass is a class together with the time the user joined it.
type EnrolledClass struct {
	models.Class
	JoinedAt time.Time
}

// ClassRepository persists classes and their enrollments.
type ClassRepository interface {
	CreateWithOwner(ctx context.Context, class *models.Class, ownerID uint) error
	GetByID(ctx context.Context, id uint) (models.Class, error)
	FindByCode(ctx context.Context, code string) (models.Class, error)
	Enroll(ctx context.Context, userID, classID uint) (bool, error)
	IsEnrolled(ctx context.Context, userID, classID uint) (bool, error)
	FirstClassID(ctx context.Context, userID uint) (*uint, error)
	ListEnrolled(ctx context.Context, userID uint) ([]EnrolledClass, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository constructs a GORM-backed class repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

// CreateWithOwner inserts the class and enrolls its creator in one
// transaction, so a failed enrollment leaves no class behind.
func (r *classRepository) CreateWithOwner(ctx context.Context, class *models.Class, ownerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(class).Error; err != nil {
			return err
		}

		enrollment := models.Enrollment{UserID: ownerID, ClassID: class.ID}
		return tx.Omit(clause.Associations).Create(&enrollment).Error
	})
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *classRepository) FindByCode(ctx context.Context, code string) (models.Class, error) {
	var class models.Class
	err := r.db.WithContext(ctx).
		Where("code_teacher = ? OR code_student = ?", code, code).
		First(&class).Error
	if err != nil {
		return models.Class{}, err
	}

	return class, nil
}

// Enroll inserts the (user, class) link in a single statement. It reports
// false when the link already existed.
func (r *classRepository) Enroll(ctx context.Context, userID, classID uint) (bool, error) {
	enrollment := models.Enrollment{UserID: userID, ClassID: classID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&enrollment)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *classRepository) IsEnrolled(ctx context.Context, userID, classID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND class_id = ?", userID, classID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *classRepository) FirstClassID(ctx context.Context, userID uint) (*uint, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Limit(1).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return nil, nil
	}

	classID := enrollments[0].ClassID
	return &classID, nil
}

func (r *classRepository) ListEnrolled(ctx context.Context, userID uint) ([]EnrolledClass, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Class").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}

	classes := make([]EnrolledClass, 0, len(enrollments))
	for _, enrollment := range enrollments {
		classes = append(classes, EnrolledClass{Class: enrollment.Class, JoinedAt: enrollment.CreatedAt})
	}

	return classes, nil
}
