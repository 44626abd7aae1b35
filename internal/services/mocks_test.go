package services

import (
	"context"
	"errors"
	"time"

	"github.com/skillbridge/backend/internal/models"
)

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	user                *models.User
	err                 error
	createErr           error
	existsByEmailResult bool
	existsByEmailError  error
	created             *models.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "user-1"
	m.created = user
	return nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailError != nil {
		return false, m.existsByEmailError
	}
	return m.existsByEmailResult, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil {
		return nil, models.NewError(models.ErrNotFound, "user not found")
	}
	return m.user, nil
}

// mockTokenGenerator is a mock implementation of AccessTokenGenerator
type mockTokenGenerator struct {
	token string
	err   error
}

func (m *mockTokenGenerator) GenerateAccessToken(userID string, role string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

// mockLearnerUserRepository keeps one user in memory and applies Update atomically.
// Update hands "lessons" to the callback as its lesson reader.
type mockLearnerUserRepository struct {
	user      *models.User
	lessons   models.LessonReader
	err       error
	updateErr error
	updates   int
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Progress = append([]models.ProgressEntry(nil), u.Progress...)
	c.Certificates = append([]models.CertificateEntry(nil), u.Certificates...)
	return &c
}

func (m *mockLearnerUserRepository) GetWithRecords(ctx context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.user == nil || m.user.ID != id {
		return nil, models.NewError(models.ErrNotFound, "user not found")
	}
	return cloneUser(m.user), nil
}

func (m *mockLearnerUserRepository) Update(ctx context.Context, id string, fn func(user *models.User, lessons models.LessonReader) error) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.user == nil || m.user.ID != id {
		return models.NewError(models.ErrNotFound, "user not found")
	}
	working := cloneUser(m.user)
	if err := fn(working, m.lessons); err != nil {
		return err
	}
	m.user = working
	m.updates++
	return nil
}

// mockLessonRepository serves lessons from a slice kept in creation order
type mockLessonRepository struct {
	lessons      []models.Lesson
	err          error
	listErr      error
	setApproved  map[string]bool
	createdCount int
}

func (m *mockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.err != nil {
		return m.err
	}
	m.createdCount++
	lesson.ID = "lesson-new"
	lesson.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.lessons = append(m.lessons, *lesson)
	return nil
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, l := range m.lessons {
		if l.ID == id {
			lesson := l
			return &lesson, nil
		}
	}
	return nil, models.NewError(models.ErrNotFound, "lesson not found")
}

func (m *mockLessonRepository) ListByTrack(ctx context.Context, track models.Track, approvedOnly bool) ([]models.Lesson, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []models.Lesson
	for _, l := range m.lessons {
		if l.Track == track && (!approvedOnly || l.Approved) {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *mockLessonRepository) ListAll(ctx context.Context) ([]models.Lesson, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]models.Lesson, 0, len(m.lessons))
	for i := len(m.lessons) - 1; i >= 0; i-- {
		result = append(result, m.lessons[i])
	}
	return result, nil
}

func (m *mockLessonRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	if m.err != nil {
		return m.err
	}
	if m.setApproved == nil {
		m.setApproved = make(map[string]bool)
	}
	m.setApproved[id] = approved
	for i := range m.lessons {
		if m.lessons[i].ID == id {
			m.lessons[i].Approved = approved
		}
	}
	return nil
}

// mockCertificateEncoder records the texts it was asked to encode
type mockCertificateEncoder struct {
	texts []string
	err   error
}

func (m *mockCertificateEncoder) Encode(ctx context.Context, text string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.texts = append(m.texts, text)
	return "data:image/png;base64,cert", nil
}

// mockAdminUserRepository is a mock implementation of AdminUserRepository
type mockAdminUserRepository struct {
	users []models.User
	err   error
}

func (m *mockAdminUserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users, nil
}

var errDatabase = errors.New("database error")
