package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/models"
)

func TestUpsertProgressKeepsSingleRowAndStartTime(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	teacher := h.user(t, "guru", models.RoleTeacher)
	student := h.user(t, "murid", models.RoleStudent)
	task := h.task(t, models.Task{Title: "Proyek", CreatedBy: teacher.ID})

	first, err := h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{
		Progress:  "1",
		StartTime: strRef("2030-01-01T08:00:00Z"),
	}, buildFileHeader(t, "bukti awal.png", pngHeader))
	require.NoError(t, err)
	require.Equal(t, "1", first.Progress)
	require.NotNil(t, first.EvidenceURL)
	firstEvidence := *first.EvidenceURL

	second, err := h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{
		Progress:  "2",
		StartTime: strRef("2030-01-01T09:00:00Z"),
		EndTime:   strRef("2030-01-01T10:30:00Z"),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "2", second.Progress)
	require.True(t, second.StartTime.Equal(time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)))
	require.True(t, second.EndTime.Equal(time.Date(2030, 1, 1, 10, 30, 0, 0, time.UTC)))
	require.NotNil(t, second.EvidenceURL)
	require.Equal(t, firstEvidence, *second.EvidenceURL)

	require.Equal(t, int64(1), h.count(t, &models.ProgressRecord{}))
	require.Len(t, h.storage.keys, 1)
	require.Contains(t, h.storage.keys[0], "evidence/")
	require.Contains(t, h.storage.keys[0], "-bukti-awal.png")
}

func TestUpsertProgressReplacesEvidenceOnlyWithNewFile(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	student := h.user(t, "murid", models.RoleStudent)
	task := h.task(t, models.Task{Title: "Esai", Type: models.TaskTypeIndividual, CreatedBy: student.ID})

	first, err := h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{Progress: "1"}, buildFileHeader(t, "a.pdf", []byte("%PDF-1.4\n")))
	require.NoError(t, err)

	second, err := h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{Progress: "2"}, buildFileHeader(t, "b.pdf", []byte("%PDF-1.7\n")))
	require.NoError(t, err)
	require.NotEqual(t, *first.EvidenceURL, *second.EvidenceURL)
	require.Contains(t, *second.EvidenceURL, "-b.pdf")
}

func TestUpsertProgressRejectsInvalidInput(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	student := h.user(t, "murid", models.RoleStudent)
	task := h.task(t, models.Task{Title: "Kuis", CreatedBy: student.ID})

	_, err := h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{Progress: "3"}, nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{Progress: "1", StartTime: strRef("yesterday")}, nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{
		Progress:  "2",
		StartTime: strRef("2030-01-01T10:00:00Z"),
		EndTime:   strRef("2030-01-01T09:00:00Z"),
	}, nil)
	require.ErrorIs(t, err, ErrValidation)

	_, err = h.progress.Upsert(ctx, student, 999, dto.ProgressUpdateRequest{Progress: "1"}, nil)
	require.ErrorIs(t, err, ErrNotFound)

	require.Zero(t, h.count(t, &models.ProgressRecord{}))
}

func TestUpsertProgressEndBeforeStoredStart(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	student := h.user(t, "murid", models.RoleStudent)
	task := h.task(t, models.Task{Title: "Kuis", CreatedBy: student.ID})

	_, err := h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{Progress: "1", StartTime: strRef("2030-01-01T10:00:00Z")}, nil)
	require.NoError(t, err)

	_, err = h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{Progress: "2", EndTime: strRef("2030-01-01T09:59:00Z")}, nil)
	require.ErrorIs(t, err, ErrEndBeforeStart)
}

func TestUpsertProgressStorageFailureWritesNothing(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	h.storage.err = errStorageDown
	student := h.user(t, "murid", models.RoleStudent)
	task := h.task(t, models.Task{Title: "Poster", CreatedBy: student.ID})

	_, err := h.progress.Upsert(context.Background(), student, task.ID, dto.ProgressUpdateRequest{Progress: "2"}, buildFileHeader(t, "poster.png", pngHeader))
	require.ErrorIs(t, err, ErrUpstream)
	require.Zero(t, h.count(t, &models.ProgressRecord{}))
}

func TestUpsertProgressRejectsDisallowedEvidence(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	student := h.user(t, "murid", models.RoleStudent)
	task := h.task(t, models.Task{Title: "Poster", CreatedBy: student.ID})

	elf := []byte{0x7F, 'E', 'L', 'F', 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := h.progress.Upsert(context.Background(), student, task.ID, dto.ProgressUpdateRequest{Progress: "2"}, buildFileHeader(t, "run.bin", elf))
	require.ErrorIs(t, err, ErrValidation)
	require.Empty(t, h.storage.keys)
}

func TestUpsertProgressInvalidatesLeaderboard(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	class := h.class(t, "cache")
	student := h.user(t, "murid", models.RoleStudent)
	task := h.task(t, models.Task{Title: "Tugas", ClassID: &class.ID, CreatedBy: student.ID})

	_, err := h.leaderboard.Leaderboard(ctx, class.ID)
	require.NoError(t, err)
	require.True(t, h.mini.Exists(leaderboardCacheKey(class.ID)))

	_, err = h.progress.Upsert(ctx, student, task.ID, dto.ProgressUpdateRequest{
		Progress:  "2",
		StartTime: strRef("2030-01-01T08:00:00Z"),
		EndTime:   strRef("2030-01-01T09:00:00Z"),
	}, nil)
	require.NoError(t, err)
	require.False(t, h.mini.Exists(leaderboardCacheKey(class.ID)))

	board, err := h.leaderboard.Leaderboard(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	require.Equal(t, int64(3600), board.Entries[0].TotalTimeSeconds)
}
