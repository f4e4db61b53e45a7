package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/observability"
	"github.com/noah-isme/schedmate-api/internal/repository"
	"github.com/noah-isme/schedmate-api/pkg/priority"
)

// TaskService creates, edits and deletes tasks.
type TaskService interface {
	Create(ctx context.Context, actor Actor, classHint *uint, req dto.TaskCreateRequest) (dto.TaskResponse, error)
	Update(ctx context.Context, actor Actor, taskID uint, req dto.TaskUpdateRequest) (dto.TaskResponse, error)
	Delete(ctx context.Context, actor Actor, taskID uint) error
}

type taskService struct {
	tasks     repository.TaskRepository
	classes   repository.ClassRepository
	scorer      priority.Scorer
	leaderboard LeaderboardInvalidator
	activity    ActivityRecorder
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// NewTaskService wires the task lifecycle manager.
func NewTaskService(tasks repository.TaskRepository, classes repository.ClassRepository, scorer priority.Scorer, leaderboard LeaderboardInvalidator, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:       tasks,
		classes:     classes,
		scorer:      scorer,
		leaderboard: leaderboard,
		activity:    activity,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		tracer:      otel.Tracer("github.com/noah-isme/schedmate-api/internal/service/task"),
		logger:      logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) Create(ctx context.Context, actor Actor, classHint *uint, req dto.TaskCreateRequest) (dto.TaskResponse, error) {
	ctx, span := s.tracer.Start(ctx, "task.create", trace.WithAttributes(
		attribute.Int("task.creator_id", int(actor.ID)),
		attribute.String("task.creator_role", string(actor.Role)),
	))
	defer span.End()

	policy, err := policyFor(actor.Role)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	req.Title = s.clean(req.Title)
	req.Description = s.clean(req.Description)
	req.Subject = s.clean(req.Subject)
	req.Category = s.clean(req.Category)
	if err := s.validator.Struct(req); err != nil {
		return dto.TaskResponse{}, validationError(err)
	}

	deadline, err := parseTimestamp("deadline", req.Deadline)
	if err != nil {
		return dto.TaskResponse{}, err
	}
	reminder, err := parseOptionalTimestamp("reminder_time", req.ReminderTime)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	classID, err := s.resolveClassID(ctx, actor.ID, classHint, req.ClassID)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	score := req.Priority
	if score == nil {
		value, err := s.scorer.Score(ctx, priority.Request{
			Category: req.Category,
			Subject:  req.Subject,
			Deadline: deadline,
		})
		if err != nil {
			observability.PriorityFallbacks().Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "priority scoring failed")
			s.logger.Warn().Err(err).Uint("creator_id", actor.ID).Msg("priority scoring failed, task not created")
			return dto.TaskResponse{}, upstreamError("score priority", err)
		}
		score = &value
	}

	task := models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Type:         policy.taskType,
		Subject:      req.Subject,
		Category:     req.Category,
		Deadline:     deadline,
		Priority:     score,
		ReminderTime: reminder,
		ClassID:      classID,
		CreatedBy:    actor.ID,
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return dto.TaskResponse{}, err
	}

	observability.TaskMutations().WithLabelValues("create", string(task.Type)).Inc()
	span.SetAttributes(attribute.Int("task.id", int(task.ID)), attribute.String("task.type", string(task.Type)))
	s.logger.Info().Uint("task_id", task.ID).Str("type", string(task.Type)).Msg("task created")

	metadata := map[string]interface{}{"type": string(task.Type)}
	if task.ClassID != nil {
		metadata["class_id"] = *task.ClassID
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     ActionTaskCreate,
		EntityType: "task",
		EntityID:   uintRef(task.ID),
		Metadata:   metadata,
	})

	return dto.NewTaskResponse(task), nil
}

// resolveClassID prefers an explicit class (path hint, then body) and falls
// back to the creator's oldest enrollment. No enrollment leaves it nil.
func (s *taskService) resolveClassID(ctx context.Context, userID uint, hint, fromBody *uint) (*uint, error) {
	if hint != nil && *hint > 0 {
		return uintRef(*hint), nil
	}
	if fromBody != nil && *fromBody > 0 {
		return uintRef(*fromBody), nil
	}
	return s.classes.FirstClassID(ctx, userID)
}

func (s *taskService) Update(ctx context.Context, actor Actor, taskID uint, req dto.TaskUpdateRequest) (dto.TaskResponse, error) {
	req.Title = s.clean(req.Title)
	req.Description = s.clean(req.Description)
	req.Subject = s.clean(req.Subject)
	req.Category = s.clean(req.Category)
	if err := s.validator.Struct(req); err != nil {
		return dto.TaskResponse{}, validationError(err)
	}

	deadline, err := parseTimestamp("deadline", req.Deadline)
	if err != nil {
		return dto.TaskResponse{}, err
	}
	reminder, err := parseOptionalTimestamp("reminder_time", req.ReminderTime)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Subject = req.Subject
	task.Category = req.Category
	task.Deadline = deadline
	if reminder != nil {
		task.ReminderTime = reminder
	}

	if err := s.tasks.Update(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	observability.TaskMutations().WithLabelValues("update", string(task.Type)).Inc()
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     ActionTaskUpdate,
		EntityType: "task",
		EntityID:   uintRef(task.ID),
	})

	return dto.NewTaskResponse(task), nil
}

// Delete removes the task and its progress rows. Any authenticated user may
// delete any task; the activity log keeps who did it.
func (s *taskService) Delete(ctx context.Context, actor Actor, taskID uint) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	// Completions of a class task feed that class's leaderboard.
	if task.ClassID != nil && s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx, *task.ClassID)
	}

	observability.TaskMutations().WithLabelValues("delete", string(task.Type)).Inc()
	s.logger.Info().Uint("task_id", taskID).Uint("actor_id", actor.ID).Msg("task deleted")

	metadata := map[string]interface{}{"title": task.Title, "created_by": task.CreatedBy}
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     ActionTaskDelete,
		EntityType: "task",
		EntityID:   uintRef(taskID),
		Metadata:   metadata,
	})

	return nil
}

func (s *taskService) clean(value string) string {
	return plainText(s.sanitizer, value)
}

// plainText strips markup and returns the text as the user typed it. The
// policy escapes entities in its output, so they are decoded again before
// length checks and storage.
func plainText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(value)))
}
