package textutil_test

import (
	"testing"

	"storyboard/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Short Film", "Short Film"},
		{"  padded  ", "padded"},
		{"Act 1/Scene 2", "Act 1-Scene 2"},
		{`C:\drafts`, "C--drafts"},
		{"What? \"Now\" <cut>|", "What Now cut"},
		{"tab\there", "tabhere"},
		{"ending...", "ending"},
		{"..", ""},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := textutil.SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
