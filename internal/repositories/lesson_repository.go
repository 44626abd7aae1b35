package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skillbridge/backend/internal/models"
	"go.uber.org/zap"
)

type lessonRepository struct {
	db     dbtx
	logger *zap.Logger
	// lockReads makes GetByID take a shared row lock, set when db is a transaction
	lockReads bool
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB, logger *zap.Logger) *lessonRepository {
	return &lessonRepository{
		db:     db,
		logger: logger,
	}
}

const lessonColumns = `id, track, title, content, duration_minutes, approved, created_at`

// Create inserts a new lesson and fills in its ID and CreatedAt
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (id, track, title, content, duration_minutes, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	id := uuid.New().String()
	createdAt := time.Now().UTC().Truncate(time.Millisecond)
	_, err := r.db.ExecContext(ctx, query,
		id, lesson.Track, lesson.Title, lesson.Content, lesson.DurationMinutes, lesson.Approved, createdAt)
	if err != nil {
		r.logger.Error("failed to create lesson", zap.Error(err))
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	lesson.ID = id
	lesson.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a lesson by ID
func (r *lessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = ?`
	if r.lockReads {
		query += ` LOCK IN SHARE MODE`
	}

	lesson := &models.Lesson{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.Track,
		&lesson.Title,
		&lesson.Content,
		&lesson.DurationMinutes,
		&lesson.Approved,
		&lesson.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewError(models.ErrNotFound, "lesson not found")
	}
	if err != nil {
		r.logger.Error("failed to get lesson", zap.Error(err), zap.String("lessonId", id))
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	return lesson, nil
}

// ListByTrack retrieves lessons of a track, oldest first
func (r *lessonRepository) ListByTrack(ctx context.Context, track models.Track, approvedOnly bool) ([]models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE track = ?`
	args := []any{track}
	if approvedOnly {
		query += ` AND approved = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	return r.queryLessons(ctx, query, args...)
}

// ListAll retrieves every lesson, newest first
func (r *lessonRepository) ListAll(ctx context.Context) ([]models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons ORDER BY created_at DESC, id DESC`

	return r.queryLessons(ctx, query)
}

// SetApproved sets the approval flag of a lesson
func (r *lessonRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	query := `UPDATE lessons SET approved = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, approved, id); err != nil {
		r.logger.Error("failed to set lesson approval", zap.Error(err), zap.String("lessonId", id))
		return fmt.Errorf("failed to set lesson approval: %w", err)
	}

	return nil
}

func (r *lessonRepository) queryLessons(ctx context.Context, query string, args ...any) ([]models.Lesson, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query lessons", zap.Error(err))
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(&l.ID, &l.Track, &l.Title, &l.Content, &l.DurationMinutes, &l.Approved, &l.CreatedAt); err != nil {
			r.logger.Error("failed to scan lesson", zap.Error(err))
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating lessons", zap.Error(err))
		return nil, fmt.Errorf("error iterating lessons: %w", err)
	}

	return lessons, nil
}
