package storage

import (
	"context"
	"io"
	"strings"

	storagego "github.com/supabase-community/storage-go"
)

// SupabaseStore uploads into a single bucket and hands back its public URL.
type SupabaseStore struct {
	client *storagego.Client
	bucket string
}

func NewSupabaseStore(supabaseURL, key, bucket string) *SupabaseStore {
	client := storagego.NewClient(strings.TrimRight(supabaseURL, "/")+"/storage/v1", key, nil)
	return &SupabaseStore{client: client, bucket: bucket}
}

func (s *SupabaseStore) Kind() string { return KindSupabase }

func (s *SupabaseStore) Put(_ context.Context, key, contentType string, r io.Reader) (string, error) {
	upsert := true
	options := storagego.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, key, r, options); err != nil {
		return "", err
	}

	publicURL := s.client.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}
