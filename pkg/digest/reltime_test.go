package digest

import (
	"testing"
	"time"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"zero", 0, "0 seconds ago"},
		{"one second", time.Second, "1 seconds ago"},
		{"ninety seconds stays in seconds", 90 * time.Second, "90 seconds ago"},
		{"two minutes", 2 * time.Minute, "2 minutes ago"},
		{"one hour stays in minutes", time.Hour, "60 minutes ago"},
		{"two hours", 2 * time.Hour, "2 hours ago"},
		// Exactly one day must fall through to hours, not report "1 day".
		{"exactly one day", 24 * time.Hour, "24 hours ago"},
		{"two days", 48 * time.Hour, "2 days ago"},
		{"one month stays in days", 30 * 24 * time.Hour, "30 days ago"},
		{"two months", 60 * 24 * time.Hour, "2 months ago"},
		{"two years", 2 * 365 * 24 * time.Hour, "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(now, now.Add(-tt.elapsed)); got != tt.want {
				t.Errorf("RelativeTime(%v) = %q, want %q", tt.elapsed, got, tt.want)
			}
		})
	}
}
