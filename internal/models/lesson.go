package models

import (
	"context"
	"time"
)

// DefaultLessonDuration is used when a lesson is created without a duration
const DefaultLessonDuration = 10

// Lesson represents a content unit of a track
type Lesson struct {
	ID              string    `json:"id"`
	Track           Track     `json:"track"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	DurationMinutes int       `json:"durationMinutes"`
	Approved        bool      `json:"approved"`
	CreatedAt       time.Time `json:"createdAt"`
}

// LessonReader reads lessons on the connection of an open user update
type LessonReader interface {
	GetByID(ctx context.Context, id string) (*Lesson, error)
	ListByTrack(ctx context.Context, track Track, approvedOnly bool) ([]Lesson, error)
}

// PublicLesson represents an approved lesson in public track listings
type PublicLesson struct {
	ID              string    `json:"id"`
	Track           Track     `json:"track"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	DurationMinutes int       `json:"durationMinutes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateLessonRequest represents a request to upload a lesson
type CreateLessonRequest struct {
	Track           string `json:"track"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	DurationMinutes int    `json:"durationMinutes"`
}

// ApproveLessonRequest represents a request to approve or reject a lesson.
// Approved is a pointer so that a missing flag can be told apart from false.
type ApproveLessonRequest struct {
	Approved *bool `json:"approved"`
}
