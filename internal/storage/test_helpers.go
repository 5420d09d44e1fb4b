package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/course-enrollment/internal/migrations"
	"github.com/magabrotheeeer/course-enrollment/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его ID
func (f *TestDataFactory) CreateUser(t *testing.T, username, email, role string) int64 {
	t.Helper()
	id, err := f.storage.CreateUser(context.Background(), models.User{
		FirstName:    "Test",
		LastName:     "User",
		Username:     username,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	})
	require.NoError(t, err)
	return id
}

// CreateCourse создает тестовый курс
func (f *TestDataFactory) CreateCourse(t *testing.T, title string, capacity *int) *models.Course {
	t.Helper()
	c, err := f.storage.CreateCourse(context.Background(), models.Course{
		Title:       title,
		Description: "Course " + title,
		Instructor:  "Jane Doe",
		Type:        "online",
		Status:      models.CourseAvailable,
		Price:       models.DefaultCoursePrice,
		Capacity:    capacity,
	})
	require.NoError(t, err)
	return c
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// CountEnrollments возвращает число строк журнала для пары студент/курс
func (v *TestVerification) CountEnrollments(t *testing.T, studentID, courseID int64) int {
	t.Helper()
	var count int
	err := v.storage.DB.QueryRow(`SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND course_id = $2`,
		studentID, courseID).Scan(&count)
	require.NoError(t, err)
	return count
}

// CountVerificationCodes возвращает число кодов для почты
func (v *TestVerification) CountVerificationCodes(t *testing.T, email string) int {
	t.Helper()
	var count int
	err := v.storage.DB.QueryRow(`SELECT COUNT(*) FROM verification_codes WHERE email = $1`, email).Scan(&count)
	require.NoError(t, err)
	return count
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL и применяет миграции
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")
	t.Cleanup(func() {
		_ = storage.Close()
	})

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")), "Failed to apply migrations")
	require.NoError(t, storage.CheckDatabaseReady(ctx))

	return storage
}
