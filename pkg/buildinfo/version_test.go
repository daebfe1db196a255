package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"dev", "none", "unknown", "dev (none)"},
		{"v0.3.0", "abc1234", "2026-10-01", "v0.3.0 (abc1234, 2026-10-01)"},
	}
	for _, tt := range tests {
		Version, Commit, Date = tt.version, tt.commit, tt.date
		if got := String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if got := Template(); !strings.Contains(got, tt.want) {
			t.Errorf("Template() = %q, want it to contain %q", got, tt.want)
		}
	}
}
