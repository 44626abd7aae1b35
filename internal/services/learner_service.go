package services

import (
	"context"
	"fmt"
	"time"

	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
)

// LessonRepository is the interface that wraps methods for Lessons table data access used by learners
type LessonRepository interface {
	// Method ListByTrack retrieves lessons of a track ordered by creation time, oldest first.
	//
	// "approvedOnly" parameter restricts the result to approved lessons.
	ListByTrack(ctx context.Context, track models.Track, approvedOnly bool) ([]models.Lesson, error)
}

// LearnerUserRepository is the interface that wraps methods for user record access used by learners
type LearnerUserRepository interface {
	// Method GetWithRecords retrieves a user together with its progress entries and certificates.
	//
	// If user with such ID does not exist, an error matching models.ErrNotFound is returned together with "nil" value.
	GetWithRecords(ctx context.Context, id string) (*models.User, error)
	// Method Update runs "fn" against the locked user record and persists the result atomically.
	//
	// The user row is locked for the duration of the call, so concurrent updates of the same user are serialised.
	// "fn" must read lessons through the given reader, which shares the update's connection.
	// If "fn" returns an error nothing is written and that error is returned.
	Update(ctx context.Context, id string, fn func(user *models.User, lessons models.LessonReader) error) error
}

const certificateDateLayout = "1/2/2006"

var errLessonNotFound = models.NewError(models.ErrNotFound, "lesson not found")

type learnerService struct {
	userRepo          LearnerUserRepository
	lessonRepo        LessonRepository
	encoder           CertificateEncoder
	dedupeCertificate bool
	logger            *zap.Logger
	now               func() time.Time
}

// NewLearnerService creates a new learner service.
//
// With "dedupeCertificates" set a track certificate is minted at most once per user,
// otherwise every completion call that finds the track complete mints a new one.
func NewLearnerService(
	userRepo LearnerUserRepository,
	lessonRepo LessonRepository,
	encoder CertificateEncoder,
	dedupeCertificates bool,
	logger *zap.Logger,
) *learnerService {
	return &learnerService{
		userRepo:          userRepo,
		lessonRepo:        lessonRepo,
		encoder:           encoder,
		dedupeCertificate: dedupeCertificates,
		logger:            logger,
		now:               time.Now,
	}
}

// ListTrackLessons retrieves approved lessons of a track, oldest first
func (s *learnerService) ListTrackLessons(ctx context.Context, trackParam string) ([]models.PublicLesson, error) {
	track, ok := models.ParseTrack(trackParam)
	if !ok {
		return nil, models.NewError(models.ErrValidation, "invalid track")
	}

	lessons, err := s.lessonRepo.ListByTrack(ctx, track, true)
	if err != nil {
		s.logger.Error("failed to list track lessons", zap.String("track", string(track)), zap.Error(err))
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	result := make([]models.PublicLesson, 0, len(lessons))
	for _, l := range lessons {
		result = append(result, models.PublicLesson{
			ID:              l.ID,
			Track:           l.Track,
			Title:           l.Title,
			Content:         l.Content,
			DurationMinutes: l.DurationMinutes,
			CreatedAt:       l.CreatedAt,
		})
	}

	return result, nil
}

// SubmitQuiz assigns a track to the user based on quiz answers.
// A track is assigned once; later submissions are rejected with a conflict.
func (s *learnerService) SubmitQuiz(ctx context.Context, userID string, answers []models.QuizAnswer) (models.Track, error) {
	if len(answers) == 0 {
		return models.TrackUnassigned, models.NewError(models.ErrValidation, "answers required")
	}

	track := AssignTrack(answers)
	err := s.userRepo.Update(ctx, userID, func(user *models.User, _ models.LessonReader) error {
		if user.Track != models.TrackUnassigned {
			return models.NewError(models.ErrConflict, "track already assigned")
		}
		user.Track = track
		return nil
	})
	if err != nil {
		return models.TrackUnassigned, err
	}

	s.logger.Info("track assigned", zap.String("userId", userID), zap.String("track", string(track)))
	return track, nil
}

// GetDashboard builds the dashboard of the user's track
func (s *learnerService) GetDashboard(ctx context.Context, userID string) (*models.Dashboard, error) {
	user, err := s.userRepo.GetWithRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Track == models.TrackUnassigned {
		return nil, models.ErrTrackNotAssigned
	}

	lessons, err := s.lessonRepo.ListByTrack(ctx, user.Track, true)
	if err != nil {
		s.logger.Error("failed to list dashboard lessons", zap.String("userId", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	return BuildDashboard(lessons, user.Progress), nil
}

// CompleteLesson marks a lesson of the user's track as completed.
//
// When every approved lesson of the track is completed a track certificate is minted.
// The whole read-modify-write runs against the locked user record, so a failure leaves nothing written.
// The lesson is read under the same lock, so a rejection committed meanwhile is observed.
func (s *learnerService) CompleteLesson(ctx context.Context, userID string, lessonID string) (*models.CompletionResult, error) {
	result := &models.CompletionResult{}
	err := s.userRepo.Update(ctx, userID, func(user *models.User, lessons models.LessonReader) error {
		lesson, err := lessons.GetByID(ctx, lessonID)
		if err != nil {
			return err
		}
		// Unknown, unapproved and foreign-track lessons are indistinguishable to the caller
		if !lesson.Approved || lesson.Track != user.Track {
			return errLessonNotFound
		}

		now := s.now().UTC()
		if i := user.FindProgress(lessonID); i >= 0 {
			user.Progress[i].Completed = true
			user.Progress[i].CompletedAt = &now
		} else {
			user.Progress = append(user.Progress, models.ProgressEntry{
				LessonID:    lessonID,
				Completed:   true,
				CompletedAt: &now,
			})
			result.NewlyCompleted = true
		}

		complete, err := trackCompleted(ctx, lessons, user)
		if err != nil {
			return err
		}
		result.AllCompleted = complete
		if !complete || (s.dedupeCertificate && user.HasTrackCertificate()) {
			return nil
		}

		text := fmt.Sprintf("Certificate: %s, Track: %s, Date: %s", user.Name, user.Track, now.Format(certificateDateLayout))
		url, err := s.encoder.Encode(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to encode certificate: %w", err)
		}
		user.Certificates = append(user.Certificates, models.CertificateEntry{
			LessonID:       nil,
			CertificateURL: url,
			CreatedAt:      now,
		})
		result.CertificateURL = &url
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.CertificateURL != nil {
		s.logger.Info("track certificate issued", zap.String("userId", userID))
	}
	return result, nil
}

// trackCompleted reports whether every approved lesson of the user's track has a completed progress entry
func trackCompleted(ctx context.Context, reader models.LessonReader, user *models.User) (bool, error) {
	lessons, err := reader.ListByTrack(ctx, user.Track, true)
	if err != nil {
		return false, fmt.Errorf("failed to list lessons: %w", err)
	}
	if len(lessons) == 0 {
		return false, nil
	}

	completed := make(map[string]bool, len(user.Progress))
	for _, p := range user.Progress {
		if p.Completed {
			completed[p.LessonID] = true
		}
	}

	count := 0
	for _, l := range lessons {
		if completed[l.ID] {
			count++
		}
	}

	return count == len(lessons), nil
}

// ListCertificates retrieves the user's certificates in issue order
func (s *learnerService) ListCertificates(ctx context.Context, userID string) ([]models.CertificateEntry, error) {
	user, err := s.userRepo.GetWithRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Certificates == nil {
		return []models.CertificateEntry{}, nil
	}
	return user.Certificates, nil
}
