package models

import "time"

type Role string

// UserRole constants
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// rank orders roles so that admin satisfies every user-level requirement
func (r Role) rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	}
	return 0
}

// AtLeast reports whether r grants at least the permissions of required
func (r Role) AtLeast(required Role) bool {
	return r.rank() > 0 && r.rank() >= required.rank()
}

// User represents a learner or admin account together with its progress and certificates
type User struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	PasswordHash string             `json:"-"` // Never serialize password hash
	Role         Role               `json:"role"`
	Track        Track              `json:"track,omitempty"`
	Progress     []ProgressEntry    `json:"progress"`
	Certificates []CertificateEntry `json:"certificates"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// ProgressEntry records that a user completed a lesson
type ProgressEntry struct {
	LessonID    string     `json:"lessonId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CertificateEntry is a certificate issued to a user.
// LessonID is nil for an overall track-completion certificate.
type CertificateEntry struct {
	ID             string    `json:"id"`
	LessonID       *string   `json:"lessonId"`
	CertificateURL string    `json:"certificateUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FindProgress returns the index of the progress entry for lessonID, or -1
func (u *User) FindProgress(lessonID string) int {
	for i := range u.Progress {
		if u.Progress[i].LessonID == lessonID {
			return i
		}
	}
	return -1
}

// HasTrackCertificate reports whether the user already holds a track-completion certificate
func (u *User) HasTrackCertificate() bool {
	for _, c := range u.Certificates {
		if c.LessonID == nil {
			return true
		}
	}
	return false
}

// UserSummary is the public part of a user returned on login
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Track Track  `json:"track,omitempty"`
}

// UserListItem represents a user in admin list responses (credentials redacted)
type UserListItem struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Role         Role               `json:"role"`
	Track        Track              `json:"track,omitempty"`
	Progress     []ProgressEntry    `json:"progress"`
	Certificates []CertificateEntry `json:"certificates"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}
