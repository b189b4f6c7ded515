package ingest

import (
	"regexp"
	"testing"
)

var storageNamePattern = regexp.MustCompile(`^\d+-[0-9a-z]{6}-[A-Za-z0-9._-]+$`)

func TestNewStorageNameMatchesPattern(t *testing.T) {
	name := NewStorageName("vacation photo (1).png")
	if !storageNamePattern.MatchString(name) {
		t.Fatalf("storage name %q does not match naming scheme", name)
	}
}

func TestNewStorageNameIsUniquePerCall(t *testing.T) {
	a := NewStorageName("report.pdf")
	b := NewStorageName("report.pdf")
	if a == b {
		t.Fatalf("expected distinct names for repeated calls, got %q twice", a)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"notes.txt", "notes.txt"},
		{"vacation photo (1).png", "vacation_photo__1_.png"},
		{"über café.jpg", "_ber_caf_.jpg"},
		{"a/b\\c.txt", "a_b_c.txt"},
		{"  ", "upload"},
	}

	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
