package config_test

import (
	"testing"

	"github.com/JaimeStill/flipbook-lab/internal/config"
)

func TestShareConfig_Finalize(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		want    string
		wantErr bool
	}{
		{"default", "", "http://localhost:8080", false},
		{"valid", "https://docs.example.com", "https://docs.example.com", false},
		{"trailing slash trimmed", "https://docs.example.com/", "https://docs.example.com", false},
		{"missing scheme", "docs.example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.ShareConfig{Origin: tt.origin}
			err := cfg.Finalize()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Finalize() = nil, want error for %q", tt.origin)
				}
				return
			}

			if err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}
			if cfg.Origin != tt.want {
				t.Errorf("Origin = %q, want %q", cfg.Origin, tt.want)
			}
		})
	}
}

func TestStorageConfig_MaxUploadSizeBytes(t *testing.T) {
	cfg := config.StorageConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.MaxUploadSizeBytes() != 100*1000*1000 {
		t.Errorf("MaxUploadSizeBytes() = %d, want 100MB default", cfg.MaxUploadSizeBytes())
	}

	cfg = config.StorageConfig{BasePath: ".data/blobs", MaxUploadSize: "5MB"}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.MaxUploadSizeBytes() != 5*1000*1000 {
		t.Errorf("MaxUploadSizeBytes() = %d, want 5MB", cfg.MaxUploadSizeBytes())
	}
}

func TestIngestConfig_Defaults(t *testing.T) {
	cfg := config.IngestConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if len(cfg.AcceptedTypes) != 1 || cfg.AcceptedTypes[0] != "application/pdf" {
		t.Errorf("AcceptedTypes = %v, want [application/pdf]", cfg.AcceptedTypes)
	}
	if cfg.MaxPageWidth != 1600 || cfg.MaxPageHeight != 2000 {
		t.Errorf("page bounds = %dx%d, want 1600x2000", cfg.MaxPageWidth, cfg.MaxPageHeight)
	}
	if cfg.ThumbnailScale != 0.2 {
		t.Errorf("ThumbnailScale = %v, want 0.2", cfg.ThumbnailScale)
	}
	if cfg.StreamBuffer != 64 {
		t.Errorf("StreamBuffer = %d, want 64", cfg.StreamBuffer)
	}
}

func TestDatabaseConfig_DisabledSkipsValidation(t *testing.T) {
	cfg := config.DatabaseConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Errorf("Finalize() of disabled database error = %v, want nil", err)
	}
}
