package ingest

import (
	"fmt"
	"slices"

	"github.com/docker/go-units"
)

// SourceFile is the raw uploaded artifact. It is consumed entirely by the
// validator and pipeline and never persisted as-is.
type SourceFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Validator performs cheap synchronous checks on an incoming file before any
// expensive work begins. It has no side effects.
type Validator struct {
	accepted []string
	maxBytes int64
}

// NewValidator creates a validator admitting the given content types up to
// maxBytes.
func NewValidator(accepted []string, maxBytes int64) *Validator {
	return &Validator{
		accepted: accepted,
		maxBytes: maxBytes,
	}
}

// Validate checks the file's presence, declared content type, and size.
func (v *Validator) Validate(file *SourceFile) error {
	if file == nil || len(file.Data) == 0 {
		return ErrNoFile
	}

	if !slices.Contains(v.accepted, file.ContentType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, file.ContentType)
	}

	if file.Size > v.maxBytes {
		return fmt.Errorf(
			"%w: file is %s, limit is %s",
			ErrFileTooLarge,
			units.HumanSize(float64(file.Size)),
			units.HumanSize(float64(v.maxBytes)),
		)
	}

	return nil
}
