package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/observability"
	"github.com/noah-isme/schedmate-api/internal/repository"
)

// ProgressService records a user's progress on a task.
type ProgressService interface {
	Upsert(ctx context.Context, actor Actor, taskID uint, req dto.ProgressUpdateRequest, evidence *multipart.FileHeader) (dto.ProgressResponse, error)
}

type progressService struct {
	tasks       repository.TaskRepository
	progress    repository.ProgressRepository
	uploads     UploadService
	leaderboard LeaderboardInvalidator
	activity    ActivityRecorder
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewProgressService wires the progress tracker. leaderboard and activity may be nil.
func NewProgressService(tasks repository.TaskRepository, progress repository.ProgressRepository, uploads UploadService, leaderboard LeaderboardInvalidator, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) ProgressService {
	return &progressService{
		tasks:       tasks,
		progress:    progress,
		uploads:     uploads,
		leaderboard: leaderboard,
		activity:    activity,
		validator:   validate,
		logger:      logger.With().Str("component", "progress_service").Logger(),
	}
}

func (s *progressService) Upsert(ctx context.Context, actor Actor, taskID uint, req dto.ProgressUpdateRequest, evidence *multipart.FileHeader) (dto.ProgressResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProgressResponse{}, ErrInvalidProgress
	}
	state, ok := models.ParseProgressState(req.Progress)
	if !ok {
		return dto.ProgressResponse{}, ErrInvalidProgress
	}

	startTime, err := parseOptionalTimestamp("start_time", req.StartTime)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	endTime, err := parseOptionalTimestamp("end_time", req.EndTime)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressResponse{}, ErrTaskNotFound
		}
		return dto.ProgressResponse{}, err
	}

	// An existing start_time is kept by the upsert, so the end time is
	// checked against it rather than against the request.
	effectiveStart := startTime
	existing, err := s.progress.Get(ctx, taskID, actor.ID)
	switch {
	case err == nil:
		if existing.StartTime != nil {
			effectiveStart = existing.StartTime
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.ProgressResponse{}, err
	}
	if endTime != nil && effectiveStart != nil && endTime.Before(*effectiveStart) {
		return dto.ProgressResponse{}, ErrEndBeforeStart
	}

	record := models.ProgressRecord{
		TaskID:    taskID,
		UserID:    actor.ID,
		Progress:  state,
		StartTime: startTime,
		EndTime:   endTime,
	}

	if evidence != nil {
		uploaded, err := s.uploads.Upload(ctx, actor.ID, models.UploadPurposeEvidence, evidence)
		if err != nil {
			s.logger.Warn().Err(err).Uint("task_id", taskID).Uint("user_id", actor.ID).Msg("evidence upload failed")
			return dto.ProgressResponse{}, err
		}
		record.EvidenceURL = &uploaded.URL
	}

	saved, err := s.progress.Upsert(ctx, &record, evidence != nil)
	if err != nil {
		if record.EvidenceURL != nil {
			s.logger.Error().Err(err).Str("evidence_url", *record.EvidenceURL).Msg("progress not saved after evidence upload")
		}
		return dto.ProgressResponse{}, err
	}

	if task.ClassID != nil && s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx, *task.ClassID)
	}

	observability.ProgressUpdates().WithLabelValues(state.String()).Inc()
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     ActionProgressUpdate,
		EntityType: "task",
		EntityID:   uintRef(taskID),
		Metadata: map[string]interface{}{
			"progress":     state.String(),
			"has_evidence": evidence != nil,
		},
	})

	return dto.NewProgressResponse(saved), nil
}
