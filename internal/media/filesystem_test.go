package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	ctx := context.Background()
	url, err := store.Upload(ctx, "donations/cat.jpg", "image/jpeg", []byte("bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "http://localhost:8080/static/donations/cat.jpg" {
		t.Errorf("url = %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "donations", "cat.jpg"))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "bytes" {
		t.Errorf("stored data = %q", data)
	}

	if err := store.Delete(ctx, "donations/cat.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "donations", "cat.jpg")); !os.IsNotExist(err) {
		t.Error("file still exists after delete")
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, "donations/cat.jpg"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://x")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, key := range []string{"../escape.jpg", "", "a/../../b"} {
		if _, err := store.Upload(context.Background(), key, "image/jpeg", nil); err == nil {
			t.Errorf("Upload(%q) expected error", key)
		}
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"donations/cat.jpg", "donations/cat.jpg", false},
		{"/leading/slash.png", "leading/slash.png", false},
		{"./dotted.png", "dotted.png", false},
		{"a/b/../c.png", "a/c.png", false},
		{"../out.png", "", true},
		{"  ", "", true},
	}
	for _, tc := range cases {
		got, err := sanitizeKey(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("sanitizeKey(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
