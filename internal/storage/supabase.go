package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore backs BlobStore with a Supabase Storage bucket.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

func NewSupabaseStore(projectURL, serviceKey, bucket string) *SupabaseStore {
	base := strings.TrimSuffix(projectURL, "/") + "/storage/v1"
	return &SupabaseStore{
		client: storage_go.NewClient(base, serviceKey, nil),
		bucket: bucket,
	}
}

func (s *SupabaseStore) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	// upsert stays off: a name collision must surface as a failure, never a
	// silent overwrite of someone else's object.
	upsert := false
	cacheControl := "3600"
	_, err := s.client.UploadFile(s.bucket, name, bytes.NewReader(data), storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

func (s *SupabaseStore) GetPublicURL(ctx context.Context, name string) (string, error) {
	res := s.client.GetPublicUrl(s.bucket, name)
	if res.SignedURL == "" {
		return "", fmt.Errorf("no public url for %s", name)
	}
	return res.SignedURL, nil
}

func (s *SupabaseStore) Remove(ctx context.Context, names []string) error {
	if _, err := s.client.RemoveFile(s.bucket, names); err != nil {
		return fmt.Errorf("remove %v: %w", names, err)
	}
	return nil
}
