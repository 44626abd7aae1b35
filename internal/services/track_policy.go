package services

import "github.com/skillbridge/backend/internal/models"

// AssignTrack picks a track from quiz answers.
//
// Each answer whose value is a track name counts as one vote for that track, other values are ignored.
// Tracks are scanned in the fixed order of models.Tracks and the first one with the strictly highest
// count wins, so ties go to the earlier track. With no votes at all the result is design.
func AssignTrack(answers []models.QuizAnswer) models.Track {
	counts := make(map[models.Track]int, len(models.Tracks))
	for _, a := range answers {
		if track, ok := models.ParseTrack(a.Answer); ok {
			counts[track]++
		}
	}

	best := models.TrackDesign
	bestCount := 0
	for _, track := range models.Tracks {
		if counts[track] > bestCount {
			best = track
			bestCount = counts[track]
		}
	}

	return best
}
