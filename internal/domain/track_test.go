package domain

import "testing"

func TestClassifyTrack(t *testing.T) {
	tests := []struct {
		name       string
		ageMinutes float64
		want       Track
	}{
		{"newborn", 0, TrackFast},
		{"young", 15, TrackFast},
		{"exactly at cutoff", 30, TrackFast},
		{"just past cutoff", 30.01, TrackSlow},
		{"old", 1440, TrackSlow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTrack(tt.ageMinutes); got != tt.want {
				t.Errorf("ClassifyTrack(%v) = %v, want %v", tt.ageMinutes, got, tt.want)
			}
		})
	}
}

func TestStatusIsValid(t *testing.T) {
	valid := []Status{StatusFresh, StatusEstablished, StatusRejected, StatusWatchlist, StatusDormant, StatusUnqualified}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Status("bogus").IsValid() {
		t.Error("expected bogus status to be invalid")
	}
}
