package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/models"
)

func TestJoinClassTeacherCodeRequiresTeacher(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	class := h.class(t, "xipa1")
	student := h.user(t, "siti", models.RoleStudent)
	teacher := h.user(t, "budi", models.RoleTeacher)

	_, err := h.enrollment.JoinClass(ctx, student, dto.JoinClassRequest{Code: class.CodeTeacher})
	require.ErrorIs(t, err, ErrForbidden)
	require.Zero(t, h.count(t, &models.Enrollment{}))

	resp, err := h.enrollment.JoinClass(ctx, teacher, dto.JoinClassRequest{Code: " " + class.CodeTeacher + " "})
	require.NoError(t, err)
	require.Equal(t, class.ID, resp.ClassID)
	require.Equal(t, "xipa1", resp.ClassName)
}

func TestJoinClassDuplicateIsConflictAndSingleRow(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	class := h.class(t, "xipa2")
	student := h.user(t, "andi", models.RoleStudent)

	_, err := h.enrollment.JoinClass(ctx, student, dto.JoinClassRequest{Code: class.CodeStudent})
	require.NoError(t, err)

	_, err = h.enrollment.JoinClass(ctx, student, dto.JoinClassRequest{Code: class.CodeStudent})
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.Equal(t, int64(1), h.count(t, &models.Enrollment{}))

	logs, err := h.activity.List(ctx, dto.ActivityListRequest{Action: ActionEnrollmentJoin, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
}

func TestJoinClassStudentCodePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("lenient", func(t *testing.T) {
		h := newHarness(t, EnrollmentPolicy{})
		class := h.class(t, "lenient")
		teacher := h.user(t, "guru1", models.RoleTeacher)

		_, err := h.enrollment.JoinClass(ctx, teacher, dto.JoinClassRequest{Code: class.CodeStudent})
		require.NoError(t, err)
	})

	t.Run("strict", func(t *testing.T) {
		h := newHarness(t, EnrollmentPolicy{StrictStudentCode: true})
		class := h.class(t, "strict")
		teacher := h.user(t, "guru2", models.RoleTeacher)
		student := h.user(t, "murid2", models.RoleStudent)

		_, err := h.enrollment.JoinClass(ctx, teacher, dto.JoinClassRequest{Code: class.CodeStudent})
		require.ErrorIs(t, err, ErrForbidden)

		_, err = h.enrollment.JoinClass(ctx, student, dto.JoinClassRequest{Code: class.CodeStudent})
		require.NoError(t, err)
	})
}

func TestJoinClassValidatesCode(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	student := h.user(t, "rina", models.RoleStudent)

	_, err := h.enrollment.JoinClass(ctx, student, dto.JoinClassRequest{Code: "   "})
	require.ErrorIs(t, err, ErrValidation)

	_, err = h.enrollment.JoinClass(ctx, student, dto.JoinClassRequest{Code: "NOPE"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateClassEnrollsCreator(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	teacher := h.user(t, "pak_dedi", models.RoleTeacher)

	resp, err := h.enrollment.CreateClass(ctx, teacher, dto.ClassCreateRequest{Name: " <b>XI IPA 3</b> "})
	require.NoError(t, err)
	require.Equal(t, "XI IPA 3", resp.Name)
	require.Len(t, resp.CodeTeacher, 8)
	require.Equal(t, byte('T'), resp.CodeTeacher[0])
	require.Equal(t, byte('S'), resp.CodeStudent[0])
	require.Equal(t, resp.CodeTeacher[1:], resp.CodeStudent[1:])

	classes, err := h.enrollment.ListClasses(ctx, teacher)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Equal(t, resp.ID, classes[0].ID)
	require.Equal(t, resp.CodeStudent, classes[0].CodeStudent)
	require.NotNil(t, classes[0].JoinedAt)
}

func TestCreateClassRejectsStudents(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	student := h.user(t, "dewi", models.RoleStudent)

	_, err := h.enrollment.CreateClass(context.Background(), student, dto.ClassCreateRequest{Name: "Mine"})
	require.ErrorIs(t, err, ErrForbidden)
	require.Zero(t, h.count(t, &models.Class{}))
}

func TestCreateClassRetriesOnCodeCollision(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	teacher := h.user(t, "bu_rani", models.RoleTeacher)

	codes := []string{"AAAAAAA", "AAAAAAA", "CCCCCCC"}
	svc := h.enrollment.(*enrollmentService)
	svc.newCode = func() string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	first, err := h.enrollment.CreateClass(ctx, teacher, dto.ClassCreateRequest{Name: "First"})
	require.NoError(t, err)
	require.Equal(t, "TAAAAAAA", first.CodeTeacher)
	require.Equal(t, "SAAAAAAA", first.CodeStudent)

	second, err := h.enrollment.CreateClass(ctx, teacher, dto.ClassCreateRequest{Name: "Second"})
	require.NoError(t, err)
	require.Equal(t, "TCCCCCCC", second.CodeTeacher)
	require.Equal(t, "SCCCCCCC", second.CodeStudent)
	require.Empty(t, codes)

	// The collided attempt rolled back without leaving a class or enrollment.
	require.Equal(t, int64(2), h.count(t, &models.Class{}))
	require.Equal(t, int64(2), h.count(t, &models.Enrollment{}))
}

func TestCreateClassKeepsPlainTextName(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	teacher := h.user(t, "pak_joko", models.RoleTeacher)

	resp, err := h.enrollment.CreateClass(context.Background(), teacher, dto.ClassCreateRequest{Name: "Math & Physics 'A'"})
	require.NoError(t, err)
	require.Equal(t, "Math & Physics 'A'", resp.Name)
}

func TestListClassesHidesCodesFromStudents(t *testing.T) {
	h := newHarness(t, EnrollmentPolicy{})
	ctx := context.Background()
	student := h.user(t, "joko", models.RoleStudent)

	_, err := h.enrollment.ListClasses(ctx, student)
	require.ErrorIs(t, err, ErrNotFound)

	older := h.class(t, "older")
	newer := h.class(t, "newer")
	now := time.Now().UTC()
	h.enroll(t, student, newer, now)
	h.enroll(t, student, older, now.Add(-time.Hour))

	classes, err := h.enrollment.ListClasses(ctx, student)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	require.Equal(t, older.ID, classes[0].ID)
	require.Empty(t, classes[0].CodeTeacher)
	require.Empty(t, classes[0].CodeStudent)
}
