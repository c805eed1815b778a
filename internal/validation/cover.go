package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// CoverConstraints defines validation rules for book cover images
var CoverConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	},
	MaxSize: 5 << 20, // 5MB
}

// ValidateUpload checks an uploaded file against constraints and returns the
// content type sniffed from its first bytes.
func ValidateUpload(header *multipart.FileHeader, constraints FileConstraints) (string, error) {
	if header.Size > constraints.MaxSize {
		return "", &FieldError{Field: "file", Message: fmt.Sprintf("is too large (max %d MB)", constraints.MaxSize/(1<<20))}
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return "", &FieldError{Field: "file", Message: fmt.Sprintf("has an unsupported extension %q", ext)}
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return SniffContentType(file, constraints)
}

// SniffContentType detects the type of r from its magic numbers and checks it
// against the allow list. The header cannot be faked by renaming the file.
func SniffContentType(r io.Reader, constraints FileConstraints) (string, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	detected := http.DetectContentType(buffer[:n])
	if !constraints.AllowedMimeTypes[detected] {
		return "", &FieldError{Field: "file", Message: fmt.Sprintf("has an unsupported type %s", detected)}
	}
	return detected, nil
}
