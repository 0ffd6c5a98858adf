package subtitle

import "testing"

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{3600, "01:00:00,000"},
		{3661.5, "01:01:01,500"},
		{0.083, "00:00:00,083"},
		{7200.5, "02:00:00,500"},
		{61.123, "00:01:01,122"},   // truncated: 0.123 stored as 0.12299...
		{3661.999, "01:01:01,998"}, // truncated, never rounded up
		{360000, "100:00:00,000"},  // hours keep growing past 99
	}

	for _, tt := range tests {
		got := FormatTimestamp(tt.seconds)
		if got != tt.want {
			t.Errorf("FormatTimestamp(%g) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatTimestamp_Deterministic(t *testing.T) {
	first := FormatTimestamp(1234.567)
	for i := 0; i < 3; i++ {
		if got := FormatTimestamp(1234.567); got != first {
			t.Fatalf("repeated call returned %q, first returned %q", got, first)
		}
	}
}
