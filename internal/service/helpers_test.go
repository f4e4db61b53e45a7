package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/schedmate-api/internal/database"
	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/repository"
	"github.com/noah-isme/schedmate-api/pkg/priority"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

type storageStub struct {
	mu       sync.Mutex
	keys     []string
	uploaded bytes.Buffer
	err      error
}

func (s *storageStub) Upload(ctx context.Context, key string, reader io.Reader) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.uploaded.Reset()
	if _, err := s.uploaded.ReadFrom(reader); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type scorerStub struct {
	score    float64
	err      error
	calls    int
	requests []priority.Request
}

func (s *scorerStub) Score(ctx context.Context, req priority.Request) (float64, error) {
	s.calls++
	s.requests = append(s.requests, req)
	if s.err != nil {
		return 0, s.err
	}
	return s.score, nil
}

// harness wires every service against one in-memory database and a
// miniredis-backed cache.
type harness struct {
	db          *gorm.DB
	redis       *redis.Client
	mini        *miniredis.Miniredis
	storage     *storageStub
	scorer      *scorerStub
	activity    ActivityService
	enrollment  EnrollmentService
	tasks       TaskService
	progress    ProgressService
	visibility  VisibilityService
	leaderboard LeaderboardService
	auth        AuthService
	profiles    ProfileService
	uploads     UploadService
}

func newHarness(t *testing.T, policy EnrollmentPolicy) *harness {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	users := repository.NewUserRepository(db)
	classes := repository.NewClassRepository(db)
	tasks := repository.NewTaskRepository(db)
	progress := repository.NewProgressRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	validate := testValidator()
	storage := &storageStub{}
	scorer := &scorerStub{score: 12.5}

	activity := NewActivityService(activityRepo, testLogger())
	uploads := NewUploadService(storage, uploadRepo, 1, testLogger())
	leaderboard := NewLeaderboardService(progress, redisClient, time.Minute, testLogger())

	return &harness{
		db:          db,
		redis:       redisClient,
		mini:        mini,
		storage:     storage,
		scorer:      scorer,
		activity:    activity,
		enrollment:  NewEnrollmentService(classes, activity, validate, policy, testLogger()),
		tasks:       NewTaskService(tasks, classes, scorer, leaderboard, activity, validate, testLogger()),
		progress:    NewProgressService(tasks, progress, uploads, leaderboard, activity, validate, testLogger()),
		visibility:  NewVisibilityService(tasks, classes, progress, testLogger()),
		leaderboard: leaderboard,
		auth:        NewAuthService(users, validate, TokenConfig{Secret: "test-secret", TTL: time.Hour}, testLogger()),
		profiles:    NewProfileService(users, uploads, validate, testLogger()),
		uploads:     uploads,
	}
}

func (h *harness) user(t *testing.T, name string, role models.Role) Actor {
	t.Helper()
	user := models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, h.db.Create(&user).Error)
	return Actor{ID: user.ID, Role: role}
}

func (h *harness) class(t *testing.T, name string) models.Class {
	t.Helper()
	class := models.Class{Name: name, CodeTeacher: "T" + strings.ToUpper(name), CodeStudent: "S" + strings.ToUpper(name)}
	require.NoError(t, h.db.Create(&class).Error)
	return class
}

func (h *harness) enroll(t *testing.T, actor Actor, class models.Class, joinedAt time.Time) {
	t.Helper()
	require.NoError(t, h.db.Create(&models.Enrollment{UserID: actor.ID, ClassID: class.ID, CreatedAt: joinedAt}).Error)
}

func (h *harness) task(t *testing.T, task models.Task) models.Task {
	t.Helper()
	if task.Description == "" {
		task.Description = "desc"
	}
	if task.Subject == "" {
		task.Subject = "fisika"
	}
	if task.Category == "" {
		task.Category = "tugas"
	}
	if task.Type == "" {
		task.Type = models.TaskTypeClass
	}
	if task.Deadline.IsZero() {
		task.Deadline = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, h.db.Create(&task).Error)
	return task
}

func (h *harness) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

var errStorageDown = errors.New("storage unavailable")

func floatRef(v float64) *float64 {
	return &v
}

func strRef(v string) *string {
	return &v
}
