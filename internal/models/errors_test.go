package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Is(t *testing.T) {
	err := NewError(ErrNotFound, "lesson not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "lesson not found", err.Error())

	wrapped := fmt.Errorf("failed to complete lesson: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))

	var appErr *Error
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "lesson not found", appErr.Message)
}

func TestErrTrackNotAssigned(t *testing.T) {
	assert.True(t, errors.Is(ErrTrackNotAssigned, ErrValidation))
	assert.True(t, errors.Is(fmt.Errorf("dashboard: %w", ErrTrackNotAssigned), ErrTrackNotAssigned))
}

func TestParseTrack(t *testing.T) {
	tests := []struct {
		input    string
		expected Track
		valid    bool
	}{
		{"design", TrackDesign, true},
		{"data-entry", TrackDataEntry, true},
		{"coding", TrackCoding, true},
		{"Design", Track("Design"), false},
		{"", TrackUnassigned, false},
		{"marketing", Track("marketing"), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			track, ok := ParseTrack(tt.input)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.expected, track)
		})
	}
}

func TestRole_AtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleUser))
	assert.True(t, RoleUser.AtLeast(RoleUser))
	assert.False(t, RoleUser.AtLeast(RoleAdmin))
	assert.False(t, Role("").AtLeast(RoleUser))
	assert.False(t, Role("guest").AtLeast(RoleUser))
}

func TestUser_FindProgress(t *testing.T) {
	user := &User{Progress: []ProgressEntry{{LessonID: "a"}, {LessonID: "b"}}}

	assert.Equal(t, 0, user.FindProgress("a"))
	assert.Equal(t, 1, user.FindProgress("b"))
	assert.Equal(t, -1, user.FindProgress("c"))
}

func TestUser_HasTrackCertificate(t *testing.T) {
	lessonID := "lesson-1"
	user := &User{Certificates: []CertificateEntry{{LessonID: &lessonID}}}
	assert.False(t, user.HasTrackCertificate())

	user.Certificates = append(user.Certificates, CertificateEntry{LessonID: nil})
	assert.True(t, user.HasTrackCertificate())
}
