package models

// Track represents one of the fixed learning paths
type Track string

const (
	TrackDesign    Track = "design"
	TrackDataEntry Track = "data-entry"
	TrackCoding    Track = "coding"
	// TrackUnassigned is the track of a user who has not completed the quiz yet
	TrackUnassigned Track = ""
)

// Tracks lists all tracks in their fixed enumeration order.
// Track assignment breaks ties using this order.
var Tracks = []Track{TrackDesign, TrackDataEntry, TrackCoding}

// IsValid reports whether t is one of the three known tracks
func (t Track) IsValid() bool {
	switch t {
	case TrackDesign, TrackDataEntry, TrackCoding:
		return true
	}
	return false
}

// ParseTrack converts a raw string into a Track
func ParseTrack(s string) (Track, bool) {
	t := Track(s)
	return t, t.IsValid()
}
