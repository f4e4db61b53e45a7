package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/repository"
)

// VisibilityService answers the read queries over tasks and progress.
type VisibilityService interface {
	ListClassTasks(ctx context.Context, actor Actor, classID uint) ([]dto.TaskWithProgress, error)
	ListMyTasks(ctx context.Context, actor Actor) ([]dto.TaskWithProgress, error)
	TaskDetail(ctx context.Context, actor Actor, taskID uint, classID *uint) (dto.TaskDetailResponse, error)
}

type visibilityService struct {
	tasks    repository.TaskRepository
	classes  repository.ClassRepository
	progress repository.ProgressRepository
	logger   zerolog.Logger
}

// NewVisibilityService constructs the task read side.
func NewVisibilityService(tasks repository.TaskRepository, classes repository.ClassRepository, progress repository.ProgressRepository, logger zerolog.Logger) VisibilityService {
	return &visibilityService{
		tasks:    tasks,
		classes:  classes,
		progress: progress,
		logger:   logger.With().Str("component", "visibility_service").Logger(),
	}
}

func (s *visibilityService) ListClassTasks(ctx context.Context, actor Actor, classID uint) ([]dto.TaskWithProgress, error) {
	enrolled, err := s.classes.IsEnrolled(ctx, actor.ID, classID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	tasks, err := s.tasks.ListForClass(ctx, classID, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	return s.withProgress(ctx, actor.ID, tasks)
}

func (s *visibilityService) ListMyTasks(ctx context.Context, actor Actor) ([]dto.TaskWithProgress, error) {
	tasks, err := s.tasks.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return s.withProgress(ctx, actor.ID, tasks)
}

func (s *visibilityService) withProgress(ctx context.Context, userID uint, tasks []models.Task) ([]dto.TaskWithProgress, error) {
	ids := make([]uint, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}

	records, err := s.progress.ListForUser(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TaskWithProgress, 0, len(tasks))
	for _, task := range tasks {
		state := models.ProgressNotStarted
		if record, ok := records[task.ID]; ok {
			state = record.Progress
		}
		items = append(items, dto.TaskWithProgress{
			TaskResponse: dto.NewTaskResponse(task),
			Progress:     state.String(),
		})
	}

	return items, nil
}

func (s *visibilityService) TaskDetail(ctx context.Context, actor Actor, taskID uint, classID *uint) (dto.TaskDetailResponse, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskDetailResponse{}, ErrTaskNotFound
		}
		return dto.TaskDetailResponse{}, err
	}
	if classID != nil && (task.ClassID == nil || *task.ClassID != *classID) {
		return dto.TaskDetailResponse{}, ErrTaskNotFound
	}

	mine := dto.ProgressResponse{
		TaskID:   task.ID,
		UserID:   actor.ID,
		Progress: models.ProgressNotStarted.String(),
	}
	record, err := s.progress.Get(ctx, task.ID, actor.ID)
	switch {
	case err == nil:
		mine = dto.NewProgressResponse(record)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.TaskDetailResponse{}, err
	}

	rows, err := s.progress.ListCompletions(ctx, task.ID)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}

	completed := make([]dto.CompletionItem, 0, len(rows))
	for _, row := range rows {
		completed = append(completed, dto.CompletionItem{
			UserID:      row.UserID,
			Username:    row.Username,
			Email:       row.Email,
			PhotoURL:    row.PhotoURL,
			EvidenceURL: row.EvidenceURL,
			StartTime:   row.StartTime,
			EndTime:     row.EndTime,
		})
	}

	return dto.TaskDetailResponse{
		Task:       dto.NewTaskResponse(task),
		MyProgress: mine,
		Completed:  completed,
	}, nil
}
