// Package storage persists generated export files, either on local disk or
// in a Supabase storage bucket.
package storage

import (
	"context"
	"io"
)

const (
	KindLocal    = "local"
	KindSupabase = "supabase"
)

// Store saves an object under key and returns where it can be fetched from:
// a filesystem path for local stores, a public URL for Supabase.
type Store interface {
	Kind() string
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}
