package models

// QuizAnswer is a single answer of the track quiz
type QuizAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// QuizRequest represents a quiz submission
type QuizRequest struct {
	Answers []QuizAnswer `json:"answers"`
}

// DashboardLesson represents a lesson of the user's track with completion status
type DashboardLesson struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	DurationMinutes int    `json:"durationMinutes"`
	Completed       bool   `json:"completed"`
}

// Dashboard is the learner's view of their track
type Dashboard struct {
	Lessons            []DashboardLesson `json:"lessons"`
	ProgressPercentage int               `json:"progressPercentage"`
}

// CompletionResult describes the outcome of completing a lesson
type CompletionResult struct {
	// NewlyCompleted is false when an existing progress entry was refreshed
	NewlyCompleted bool `json:"newlyCompleted"`
	AllCompleted   bool `json:"allCompleted"`
	// CertificateURL is set only when a certificate was minted by this call
	CertificateURL *string `json:"certificateUrl"`
}
