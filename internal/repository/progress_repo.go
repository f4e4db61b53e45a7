package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/schedmate-api/internal/models"
)

// CompletionRow is a finished progress record joined with the user profile.
type CompletionRow struct {
	UserID      uint
	Username    string
	Email       string
	PhotoURL    *string
	EvidenceURL *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// LeaderboardRow is a timed, finished progress record of a class task.
type LeaderboardRow struct {
	UserID    uint
	Username  string
	PhotoURL  *string
	StartTime time.Time
	EndTime   time.Time
}

// ProgressRepository persists per-user task progress.
type ProgressRepository interface {
	Get(ctx context.Context, taskID, userID uint) (models.ProgressRecord, error)
	Upsert(ctx context.Context, record *models.ProgressRecord, replaceEvidence bool) (models.ProgressRecord, error)
	ListForUser(ctx context.Context, userID uint, taskIDs []uint) (map[uint]models.ProgressRecord, error)
	ListCompletions(ctx context.Context, taskID uint) ([]CompletionRow, error)
	ListTimedCompletionsForClass(ctx context.Context, classID uint) ([]LeaderboardRow, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository constructs a progress repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, taskID, userID uint) (models.ProgressRecord, error) {
	var record models.ProgressRecord
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&record).Error
	if err != nil {
		return models.ProgressRecord{}, err
	}

	return record, nil
}

// Upsert inserts the record or, when (task_id, user_id) already exists,
// updates progress and end_time in the same statement. start_time is only
// written on insert; evidence_url is replaced only when replaceEvidence is set.
func (r *progressRepository) Upsert(ctx context.Context, record *models.ProgressRecord, replaceEvidence bool) (models.ProgressRecord, error) {
	columns := []string{"progress", "end_time", "updated_at"}
	if replaceEvidence {
		columns = append(columns, "evidence_url")
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Omit(clause.Associations).
		Create(record).Error
	if err != nil {
		return models.ProgressRecord{}, err
	}

	return r.Get(ctx, record.TaskID, record.UserID)
}

func (r *progressRepository) ListForUser(ctx context.Context, userID uint, taskIDs []uint) (map[uint]models.ProgressRecord, error) {
	result := make(map[uint]models.ProgressRecord, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	var records []models.ProgressRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id IN ?", userID, taskIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		result[record.TaskID] = record
	}

	return result, nil
}

func (r *progressRepository) ListCompletions(ctx context.Context, taskID uint) ([]CompletionRow, error) {
	var rows []CompletionRow
	err := r.db.WithContext(ctx).
		Table("task_user AS tu").
		Select("tu.user_id, u.username, u.email, u.photo_url, tu.evidence_url, tu.start_time, tu.end_time").
		Joins("JOIN users AS u ON u.id = tu.user_id").
		Where("tu.task_id = ? AND tu.progress = ?", taskID, models.ProgressDone).
		Order("tu.updated_at ASC, tu.user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// ListTimedCompletionsForClass returns done records of the class's tasks that
// carry both timestamps. Records missing either timestamp are left out.
func (r *progressRepository) ListTimedCompletionsForClass(ctx context.Context, classID uint) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).
		Table("task_user AS tu").
		Select("tu.user_id, u.username, u.photo_url, tu.start_time, tu.end_time").
		Joins("JOIN task AS t ON t.id = tu.task_id").
		Joins("JOIN users AS u ON u.id = tu.user_id").
		Where("t.class_id = ? AND tu.progress = ?", classID, models.ProgressDone).
		Where("tu.start_time IS NOT NULL AND tu.end_time IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}
