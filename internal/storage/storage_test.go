package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestMinioStorePublicURLUsesPublicBase(t *testing.T) {
	store := &MinioStore{bucket: "uploads", publicBase: "http://localhost:9000/uploads"}

	got := store.PublicURL("171234-ab12cd-photo.jpg")
	want := "http://localhost:9000/uploads/171234-ab12cd-photo.jpg"
	if got != want {
		t.Fatalf("PublicURL = %q, want %q", got, want)
	}
}

func TestSupabaseStorePublicURL(t *testing.T) {
	store := NewSupabaseStore("https://proj.supabase.co/", "service-key", "uploads")

	got := store.PublicURL("171234-ab12cd-photo.jpg")
	want := "https://proj.supabase.co/storage/v1/object/public/uploads/171234-ab12cd-photo.jpg"
	if got != want {
		t.Fatalf("PublicURL = %q, want %q", got, want)
	}
}

func TestIsDuplicate(t *testing.T) {
	cases := []struct {
		err  string
		want bool
	}{
		{"Duplicate", true},
		{"the resource already exists", true},
		{"connection refused", false},
	}

	for _, tc := range cases {
		if got := isDuplicate(errors.New(tc.err)); got != tc.want {
			t.Fatalf("isDuplicate(%q) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestPublicReadPolicyTargetsBucket(t *testing.T) {
	policy := publicReadPolicy("uploads")

	if !strings.Contains(policy, `"arn:aws:s3:::uploads/*"`) {
		t.Fatalf("policy missing bucket resource: %s", policy)
	}
	if !strings.Contains(policy, `"s3:GetObject"`) {
		t.Fatalf("policy missing GetObject action: %s", policy)
	}
}
