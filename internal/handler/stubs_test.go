package handler_test

import (
	"context"
	"mime/multipart"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/service"
)

type stubEnrollmentService struct {
	lastActor service.Actor
	lastJoin  dto.JoinClassRequest
	classes   []dto.ClassResponse
	created   dto.ClassResponse
	joined    dto.JoinClassResponse
	err       error
}

func (s *stubEnrollmentService) JoinClass(_ context.Context, actor service.Actor, req dto.JoinClassRequest) (dto.JoinClassResponse, error) {
	s.lastActor = actor
	s.lastJoin = req
	return s.joined, s.err
}

func (s *stubEnrollmentService) ListClasses(_ context.Context, actor service.Actor) ([]dto.ClassResponse, error) {
	s.lastActor = actor
	return s.classes, s.err
}

func (s *stubEnrollmentService) CreateClass(_ context.Context, actor service.Actor, _ dto.ClassCreateRequest) (dto.ClassResponse, error) {
	s.lastActor = actor
	return s.created, s.err
}

type stubTaskService struct {
	lastActor  service.Actor
	lastHint   *uint
	lastCreate dto.TaskCreateRequest
	lastID     uint
	response   dto.TaskResponse
	err        error
}

func (s *stubTaskService) Create(_ context.Context, actor service.Actor, classHint *uint, req dto.TaskCreateRequest) (dto.TaskResponse, error) {
	s.lastActor = actor
	s.lastHint = classHint
	s.lastCreate = req
	return s.response, s.err
}

func (s *stubTaskService) Update(_ context.Context, actor service.Actor, taskID uint, _ dto.TaskUpdateRequest) (dto.TaskResponse, error) {
	s.lastActor = actor
	s.lastID = taskID
	return s.response, s.err
}

func (s *stubTaskService) Delete(_ context.Context, actor service.Actor, taskID uint) error {
	s.lastActor = actor
	s.lastID = taskID
	return s.err
}

type stubVisibilityService struct {
	lastClassID *uint
	lastTaskID  uint
	tasks       []dto.TaskWithProgress
	detail      dto.TaskDetailResponse
	err         error
}

func (s *stubVisibilityService) ListClassTasks(_ context.Context, _ service.Actor, classID uint) ([]dto.TaskWithProgress, error) {
	s.lastClassID = &classID
	return s.tasks, s.err
}

func (s *stubVisibilityService) ListMyTasks(context.Context, service.Actor) ([]dto.TaskWithProgress, error) {
	return s.tasks, s.err
}

func (s *stubVisibilityService) TaskDetail(_ context.Context, _ service.Actor, taskID uint, classID *uint) (dto.TaskDetailResponse, error) {
	s.lastTaskID = taskID
	s.lastClassID = classID
	return s.detail, s.err
}

type stubProgressService struct {
	lastTaskID   uint
	lastRequest  dto.ProgressUpdateRequest
	lastEvidence *multipart.FileHeader
	response     dto.ProgressResponse
	err          error
}

func (s *stubProgressService) Upsert(_ context.Context, _ service.Actor, taskID uint, req dto.ProgressUpdateRequest, evidence *multipart.FileHeader) (dto.ProgressResponse, error) {
	s.lastTaskID = taskID
	s.lastRequest = req
	s.lastEvidence = evidence
	return s.response, s.err
}

type stubLeaderboardService struct {
	response dto.LeaderboardResponse
	err      error
}

func (s *stubLeaderboardService) Invalidate(context.Context, uint) {}

func (s *stubLeaderboardService) Leaderboard(_ context.Context, classID uint) (dto.LeaderboardResponse, error) {
	response := s.response
	response.ClassID = classID
	return response, s.err
}

type stubAuthService struct {
	response dto.AuthResponse
	err      error
}

func (s *stubAuthService) Register(context.Context, dto.RegisterRequest) (dto.AuthResponse, error) {
	return s.response, s.err
}

func (s *stubAuthService) Login(context.Context, dto.LoginRequest) (dto.AuthResponse, error) {
	return s.response, s.err
}

type stubProfileService struct {
	lastActor service.Actor
	lastID    uint
	response  dto.ProfileResponse
	err       error
}

func (s *stubProfileService) Get(_ context.Context, userID uint) (dto.ProfileResponse, error) {
	s.lastID = userID
	return s.response, s.err
}

func (s *stubProfileService) Update(_ context.Context, actor service.Actor, userID uint, _ dto.ProfileUpdateRequest) (dto.ProfileResponse, error) {
	s.lastActor = actor
	s.lastID = userID
	return s.response, s.err
}

func (s *stubProfileService) UploadPhoto(_ context.Context, actor service.Actor, _ *multipart.FileHeader) (dto.ProfileResponse, error) {
	s.lastActor = actor
	return s.response, s.err
}

type stubActivityService struct {
	lastRequest dto.ActivityListRequest
	response    dto.ActivityListResponse
}

func (s *stubActivityService) Record(context.Context, service.ActivityEntry) (dto.ActivityResponse, error) {
	return dto.ActivityResponse{}, nil
}

func (s *stubActivityService) List(_ context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	s.lastRequest = req
	return s.response, nil
}
