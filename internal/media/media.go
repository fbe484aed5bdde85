// Package media stores uploaded pet images and hands back publicly
// referenced URLs. Two drivers exist: AWS S3 for production and a local
// filesystem store for development and tests.
package media

import "context"

// Store persists image bytes under a key and serves them by URL.
type Store interface {
	// Upload writes the bytes and returns the public URL for the stored
	// object.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
