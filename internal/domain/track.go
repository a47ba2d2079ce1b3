package domain

// Track represents the age-based processing lane for a token.
type Track string

const (
	TrackFast Track = "FAST"
	TrackSlow Track = "SLOW"
)

// FastTrackMaxAgeMinutes is the inclusive age cutoff for the FAST track.
const FastTrackMaxAgeMinutes = 30.0

// String returns the string representation of Track.
func (t Track) String() string {
	return string(t)
}

// IsValid checks if the track is a valid value.
func (t Track) IsValid() bool {
	return t == TrackFast || t == TrackSlow
}

// ClassifyTrack selects the processing track for a token age.
func ClassifyTrack(ageMinutes float64) Track {
	if ageMinutes <= FastTrackMaxAgeMinutes {
		return TrackFast
	}
	return TrackSlow
}
