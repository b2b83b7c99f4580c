package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/flipbook-lab/internal/config"
	"github.com/JaimeStill/flipbook-lab/internal/storage"
)

func newTestStorage(t *testing.T) storage.System {
	t.Helper()

	cfg := &config.StorageConfig{BasePath: t.TempDir()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sys, err := storage.New(cfg, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := sys.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return sys
}

func TestFilesystem_StoreRetrieve(t *testing.T) {
	sys := newTestStorage(t)
	ctx := context.Background()

	key := "flipbooks/abc/pages/0001.pdf"
	if err := sys.Store(ctx, key, []byte("page data")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	data, err := sys.Retrieve(ctx, key)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if string(data) != "page data" {
		t.Errorf("Retrieve() = %q, want %q", data, "page data")
	}

	// overwrite replaces contents
	if err := sys.Store(ctx, key, []byte("updated")); err != nil {
		t.Fatalf("Store() overwrite error = %v", err)
	}
	data, _ = sys.Retrieve(ctx, key)
	if string(data) != "updated" {
		t.Errorf("Retrieve() after overwrite = %q, want %q", data, "updated")
	}
}

func TestFilesystem_Retrieve_NotFound(t *testing.T) {
	sys := newTestStorage(t)

	_, err := sys.Retrieve(context.Background(), "missing/key")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Retrieve() error = %v, want ErrNotFound", err)
	}
}

func TestFilesystem_Delete_Idempotent(t *testing.T) {
	sys := newTestStorage(t)
	ctx := context.Background()

	key := "flipbooks/abc/source.pdf"
	sys.Store(ctx, key, []byte("data"))

	if err := sys.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := sys.Delete(ctx, key); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}

	exists, err := sys.Validate(ctx, key)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if exists {
		t.Error("key still exists after delete")
	}
}

func TestFilesystem_DeletePrefix(t *testing.T) {
	sys := newTestStorage(t)
	ctx := context.Background()

	keys := []string{
		"flipbooks/abc/source.pdf",
		"flipbooks/abc/pages/0001.pdf",
		"flipbooks/abc/thumbs/0001.pdf",
		"flipbooks/other/source.pdf",
	}
	for _, key := range keys {
		if err := sys.Store(ctx, key, []byte("data")); err != nil {
			t.Fatalf("Store(%s) error = %v", key, err)
		}
	}

	if err := sys.DeletePrefix(ctx, "flipbooks/abc"); err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}

	for _, key := range keys[:3] {
		if exists, _ := sys.Validate(ctx, key); exists {
			t.Errorf("key %s survived DeletePrefix", key)
		}
	}

	if exists, _ := sys.Validate(ctx, keys[3]); !exists {
		t.Error("unrelated key removed by DeletePrefix")
	}

	// empty prefix is idempotent
	if err := sys.DeletePrefix(ctx, "flipbooks/abc"); err != nil {
		t.Errorf("second DeletePrefix() error = %v, want nil", err)
	}
}

func TestFilesystem_InvalidKeys(t *testing.T) {
	sys := newTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"traversal", "../escape"},
		{"nested traversal", "flipbooks/../../escape"},
		{"absolute", "/etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sys.Store(ctx, tt.key, []byte("x")); !errors.Is(err, storage.ErrInvalidKey) {
				t.Errorf("Store(%q) error = %v, want ErrInvalidKey", tt.key, err)
			}
			if _, err := sys.Retrieve(ctx, tt.key); !errors.Is(err, storage.ErrInvalidKey) {
				t.Errorf("Retrieve(%q) error = %v, want ErrInvalidKey", tt.key, err)
			}
		})
	}
}

func TestFilesystem_StoreCreatesParents(t *testing.T) {
	base := t.TempDir()
	cfg := &config.StorageConfig{BasePath: base}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sys, err := storage.New(cfg, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := sys.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	key := "deeply/nested/path/file.bin"
	if err := sys.Store(context.Background(), key, []byte("x")); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(base, "deeply", "nested", "path", "file.bin")); err != nil {
		t.Errorf("stored file missing on disk: %v", err)
	}
}
