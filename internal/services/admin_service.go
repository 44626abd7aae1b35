package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
)

// AdminLessonRepository is the interface that wraps methods for Lessons table data access used by admins
type AdminLessonRepository interface {
	// Method Create inserts a new lesson into the database. Its ID and CreatedAt fields are filled in on success.
	Create(ctx context.Context, lesson *models.Lesson) error
	// Method GetByID retrieves a lesson by ID.
	//
	// If lesson with such ID does not exist, an error matching models.ErrNotFound is returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.Lesson, error)
	// Method ListAll retrieves every lesson regardless of approval, newest first.
	ListAll(ctx context.Context) ([]models.Lesson, error)
	// Method SetApproved sets the approval flag of a lesson.
	SetApproved(ctx context.Context, id string, approved bool) error
}

// AdminUserRepository is the interface that wraps methods for user listing
type AdminUserRepository interface {
	// Method ListAll retrieves every user with progress and certificates, newest first.
	ListAll(ctx context.Context) ([]models.User, error)
}

type adminService struct {
	lessonRepo AdminLessonRepository
	userRepo   AdminUserRepository
	logger     *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(lessonRepo AdminLessonRepository, userRepo AdminUserRepository, logger *zap.Logger) *adminService {
	return &adminService{
		lessonRepo: lessonRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// ListLessons retrieves every lesson, newest first
func (s *adminService) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	lessons, err := s.lessonRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list lessons", zap.Error(err))
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

// CreateLesson uploads a new lesson awaiting approval
func (s *adminService) CreateLesson(ctx context.Context, req *models.CreateLessonRequest) (*models.Lesson, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if req.Track == "" || title == "" || content == "" {
		return nil, models.NewError(models.ErrValidation, "track, title and content are required")
	}

	track, ok := models.ParseTrack(req.Track)
	if !ok {
		return nil, models.NewError(models.ErrValidation, "invalid track")
	}

	duration := req.DurationMinutes
	switch {
	case duration < 0:
		return nil, models.NewError(models.ErrValidation, "duration must not be negative")
	case duration == 0:
		duration = models.DefaultLessonDuration
	}

	lesson := &models.Lesson{
		Track:           track,
		Title:           title,
		Content:         content,
		DurationMinutes: duration,
		Approved:        false,
	}
	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		s.logger.Error("failed to create lesson", zap.Error(err))
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	s.logger.Info("lesson uploaded", zap.String("lessonId", lesson.ID), zap.String("track", string(track)))
	return lesson, nil
}

// SetLessonApproval approves or rejects a lesson and returns the updated lesson
func (s *adminService) SetLessonApproval(ctx context.Context, id string, approved bool) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.lessonRepo.SetApproved(ctx, id, approved); err != nil {
		s.logger.Error("failed to set lesson approval", zap.String("lessonId", id), zap.Error(err))
		return nil, fmt.Errorf("failed to set lesson approval: %w", err)
	}

	lesson.Approved = approved
	return lesson, nil
}

// ListUsers retrieves every user without credentials, newest first
func (s *adminService) ListUsers(ctx context.Context) ([]models.UserListItem, error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]models.UserListItem, 0, len(users))
	for _, u := range users {
		item := models.UserListItem{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Role:         u.Role,
			Track:        u.Track,
			Progress:     u.Progress,
			Certificates: u.Certificates,
			CreatedAt:    u.CreatedAt,
		}
		if item.Progress == nil {
			item.Progress = []models.ProgressEntry{}
		}
		if item.Certificates == nil {
			item.Certificates = []models.CertificateEntry{}
		}
		result = append(result, item)
	}

	return result, nil
}
