package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-enrollment/internal/lib/errs"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

func TestStorage_Users(t *testing.T) {
	s := setupTestDatabase(t)
	factory := NewTestDataFactory(s)
	ctx := context.Background()

	id := factory.CreateUser(t, "alice", "alice@example.com", models.RoleStudent)

	t.Run("get by username and email", func(t *testing.T) {
		byName, err := s.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, id, byName.ID)
		assert.Equal(t, models.RoleStudent, byName.Role)

		byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, byEmail.ID)
	})

	t.Run("duplicate username is conflict", func(t *testing.T) {
		_, err := s.CreateUser(ctx, models.User{Username: "alice", Email: "other@example.com",
			PasswordHash: "x", Role: models.RoleStudent})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrConflict))
	})

	t.Run("missing user is not found", func(t *testing.T) {
		_, err := s.GetUserByID(ctx, 999999)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		phone := "+100200300"
		u, err := s.UpdateUser(ctx, "alice", models.ProfileUpdate{PhoneNumber: &phone})
		require.NoError(t, err)
		assert.Equal(t, phone, u.PhoneNumber)
		assert.Equal(t, "Test", u.FirstName)
		assert.Equal(t, "hashedpassword", u.PasswordHash)
	})

	t.Run("password update by email", func(t *testing.T) {
		require.NoError(t, s.UpdatePasswordByEmail(ctx, "alice@example.com", "newhash"))
		u, err := s.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "newhash", u.PasswordHash)

		err = s.UpdatePasswordByEmail(ctx, "nobody@example.com", "x")
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})
}

func TestStorage_Courses(t *testing.T) {
	s := setupTestDatabase(t)
	factory := NewTestDataFactory(s)
	ctx := context.Background()

	goCourse := factory.CreateCourse(t, "Go Concurrency", nil)
	factory.CreateCourse(t, "Advanced go_patterns", nil)
	factory.CreateCourse(t, "Rust Basics", nil)

	t.Run("search is case insensitive substring", func(t *testing.T) {
		found, err := s.SearchCourses(ctx, "GO")
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		found, err := s.SearchCourses(ctx, "go_p")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Advanced go_patterns", found[0].Title)
	})

	t.Run("title search has trigram index", func(t *testing.T) {
		var def string
		err := s.DB.QueryRowContext(ctx,
			`SELECT indexdef FROM pg_indexes WHERE tablename = 'courses' AND indexname = 'idx_courses_title_trgm'`,
		).Scan(&def)
		require.NoError(t, err)
		assert.Contains(t, def, "gin_trgm_ops")
	})

	t.Run("update changes only given fields", func(t *testing.T) {
		price := 149.5
		updated, err := s.UpdateCourse(ctx, goCourse.ID, models.CourseUpdate{Price: &price})
		require.NoError(t, err)
		assert.InDelta(t, 149.5, updated.Price, 0.0001)
		assert.Equal(t, goCourse.Title, updated.Title)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteCourse(ctx, goCourse.ID))
		_, err := s.GetCourse(ctx, goCourse.ID)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
		assert.True(t, errors.Is(s.DeleteCourse(ctx, goCourse.ID), errs.ErrNotFound))
	})

	t.Run("list", func(t *testing.T) {
		all, err := s.ListCourses(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestStorage_Enrollments(t *testing.T) {
	s := setupTestDatabase(t)
	factory := NewTestDataFactory(s)
	check := NewTestVerification(s)
	ctx := context.Background()

	studentID := factory.CreateUser(t, "bob", "bob@example.com", models.RoleStudent)
	otherID := factory.CreateUser(t, "carol", "carol@example.com", models.RoleStudent)
	one := 1
	course := factory.CreateCourse(t, "Databases", &one)

	row := models.Enrollment{
		StudentID:   studentID,
		StudentName: "Test User",
		CourseID:    course.ID,
		CourseName:  course.Title,
		Payment:     9900,
	}

	t.Run("duplicate rows allowed without limits", func(t *testing.T) {
		_, err := s.CreateEnrollment(ctx, row, models.EnrollmentLimits{})
		require.NoError(t, err)
		_, err = s.CreateEnrollment(ctx, row, models.EnrollmentLimits{})
		require.NoError(t, err)
		assert.Equal(t, 2, check.CountEnrollments(t, studentID, course.ID))
	})

	t.Run("unique per student", func(t *testing.T) {
		_, err := s.CreateEnrollment(ctx, row, models.EnrollmentLimits{UniquePerStudent: true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAlreadyEnrolled))
		assert.True(t, errors.Is(err, errs.ErrConflict))
	})

	t.Run("capacity", func(t *testing.T) {
		other := row
		other.StudentID = otherID
		_, err := s.CreateEnrollment(ctx, other, models.EnrollmentLimits{EnforceCapacity: true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCourseFull))
		assert.Equal(t, 0, check.CountEnrollments(t, otherID, course.ID))
	})

	t.Run("snapshot survives course rename", func(t *testing.T) {
		title := "Databases II"
		_, err := s.UpdateCourse(ctx, course.ID, models.CourseUpdate{Title: &title})
		require.NoError(t, err)

		list, err := s.ListEnrollmentsByStudent(ctx, studentID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Databases", list[0].CourseName)
		assert.Equal(t, int64(9900), list[0].Payment)
	})

	t.Run("list all", func(t *testing.T) {
		list, err := s.ListEnrollments(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestStorage_VerificationCodes(t *testing.T) {
	s := setupTestDatabase(t)
	check := NewTestVerification(s)
	ctx := context.Background()

	old := time.Now().Add(-time.Hour).UTC()
	_, err := s.CreateVerificationCode(ctx, "dave@example.com", "123456", old)
	require.NoError(t, err)
	newID, err := s.CreateVerificationCode(ctx, "dave@example.com", "123456", time.Now().UTC())
	require.NoError(t, err)

	vc, err := s.FindVerificationCode(ctx, "dave@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, newID, vc.ID)

	_, err = s.FindVerificationCode(ctx, "dave@example.com", "654321")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	require.NoError(t, s.DeleteVerificationCode(ctx, newID))
	assert.Equal(t, 1, check.CountVerificationCodes(t, "dave@example.com"))
	assert.True(t, errors.Is(s.DeleteVerificationCode(ctx, newID), errs.ErrNotFound))
}

func TestStorage_Confirmations(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	c := models.PaymentConfirmation{
		ID:            uuid.NewString(),
		SessionID:     "cs_test_1",
		CourseID:      7,
		UserID:        3,
		AmountCharged: 12900,
	}

	created, isNew, err := s.CreatePendingConfirmation(ctx, c)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, models.ConfirmationPending, created.Status)

	c.ID = uuid.NewString()
	again, isNew, err := s.CreatePendingConfirmation(ctx, c)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, again.ID)

	require.NoError(t, s.MarkConfirmation(ctx, "cs_test_1", models.ConfirmationFailed, "db down"))
	got, err := s.GetConfirmation(ctx, "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmationFailed, got.Status)
	assert.Equal(t, "db down", got.LastError)
	assert.Equal(t, 1, got.Attempts)

	failed, err := s.ListConfirmations(ctx, models.ConfirmationFailed)
	require.NoError(t, err)
	assert.Len(t, failed, 1)
	enrolled, err := s.ListConfirmations(ctx, models.ConfirmationEnrolled)
	require.NoError(t, err)
	assert.Empty(t, enrolled)
	all, err := s.ListConfirmations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.True(t, errors.Is(s.MarkConfirmation(ctx, "missing", models.ConfirmationEnrolled, ""), errs.ErrNotFound))
}
