package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	storagego "github.com/supabase-community/storage-go"
)

// SupabaseStore implements ObjectStore on a Supabase Storage bucket.
type SupabaseStore struct {
	client  *storagego.Client
	bucket  string
	baseURL string
}

// NewSupabaseStore connects to Supabase Storage for the given project.
func NewSupabaseStore(projectURL, serviceKey, bucket string) *SupabaseStore {
	baseURL := strings.TrimRight(projectURL, "/")
	return &SupabaseStore{
		client:  storagego.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Put stores the object under name. Upsert stays disabled so a taken name
// yields ErrObjectExists instead of replacing the stored object.
func (s *SupabaseStore) Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	upsert := false
	_, err := s.client.UploadFile(s.bucket, name, reader, storagego.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		if isDuplicate(err) {
			return "", ErrObjectExists
		}
		return "", fmt.Errorf("upload object %q: %w", name, err)
	}

	return s.bucket + "/" + name, nil
}

// PublicURL returns the public object URL for the bucket.
func (s *SupabaseStore) PublicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, name)
}

// Ping verifies the bucket is reachable.
func (s *SupabaseStore) Ping(ctx context.Context) error {
	if _, err := s.client.ListFiles(s.bucket, "", storagego.FileSearchOptions{Limit: 1}); err != nil {
		return fmt.Errorf("ping object store: %w", err)
	}
	return nil
}

// isDuplicate reports whether the storage API rejected the upload because
// the object name is already taken.
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}
