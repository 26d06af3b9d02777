package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"field-service-server/config"
)

const maxImageSize = 5 * 1024 * 1024 // 5MB

// UploadService stores completion photos in Cloudinary. The client is built
// once at startup; when no Cloudinary URL is configured, uploads fail with a
// clear error instead of panicking.
type UploadService struct {
	cld *cloudinary.Cloudinary
}

// NewUploadService creates an upload service from Cloudinary config. An
// empty URL yields a disabled service.
func NewUploadService(cfg config.CloudinaryConfig) (*UploadService, error) {
	if cfg.URL == "" {
		return &UploadService{}, nil
	}

	cld, err := cloudinary.NewFromURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &UploadService{cld: cld}, nil
}

// validImageFile checks mimetype by extension and size (<= 5MB)
func validImageFile(h *multipart.FileHeader) bool {
	if h == nil || h.Size <= 0 || h.Size > maxImageSize {
		return false
	}
	ext := strings.ToLower(filepath.Ext(h.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	default:
		return false
	}
}

// UploadTaskPhoto uploads one completion photo for a task and returns its
// secure URL.
func (s *UploadService) UploadTaskPhoto(ctx context.Context, taskID uint, header *multipart.FileHeader) (string, error) {
	if s.cld == nil {
		return "", errors.New("cloudinary is not configured")
	}
	if !validImageFile(header) {
		return "", ErrInvalidImage
	}

	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	overwrite := true
	unique := true
	up, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         fmt.Sprintf("tasks/%d", taskID),
		PublicID:       strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename)),
		Overwrite:      &overwrite,
		UniqueFilename: &unique,
		ResourceType:   "image",
	})
	if err != nil {
		return "", err
	}

	return up.SecureURL, nil
}
