package services

import (
	"math"

	"github.com/skillbridge/backend/internal/models"
)

// BuildDashboard projects the lessons of a track and the user's progress into a dashboard.
// lessons are expected to be the approved lessons of the track in display order.
func BuildDashboard(lessons []models.Lesson, progress []models.ProgressEntry) *models.Dashboard {
	completed := make(map[string]bool, len(progress))
	for _, p := range progress {
		if p.Completed {
			completed[p.LessonID] = true
		}
	}

	dashboard := &models.Dashboard{
		Lessons: make([]models.DashboardLesson, 0, len(lessons)),
	}
	done := 0
	for _, l := range lessons {
		if completed[l.ID] {
			done++
		}
		dashboard.Lessons = append(dashboard.Lessons, models.DashboardLesson{
			ID:              l.ID,
			Title:           l.Title,
			Content:         l.Content,
			DurationMinutes: l.DurationMinutes,
			Completed:       completed[l.ID],
		})
	}

	if len(lessons) > 0 {
		dashboard.ProgressPercentage = int(math.Round(float64(done) * 100 / float64(len(lessons))))
	}

	return dashboard
}
