package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/observability"
	"github.com/vibehub/backend/internal/supabase"
)

// Uploader stores objects, returning their public URL, and removes them.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

var extPattern = regexp.MustCompile(`^\.[a-zA-Z0-9]{1,8}$`)

// MediaService turns uploaded files into stable URLs for messages and stories.
type MediaService struct {
	uploader Uploader
	newID    func() string
}

// NewMediaService creates a new MediaService instance.
func NewMediaService(uploader Uploader) *MediaService {
	return &MediaService{uploader: uploader, newID: func() string { return uuid.New().String() }}
}

// Upload stores body for owner and reports the URL and message kind.
func (s *MediaService) Upload(ctx context.Context, owner, fileName, contentType string, body io.Reader) (*models.MediaUpload, error) {
	if owner == "" {
		return nil, apperrors.InvalidArg("owner is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	objectPath := owner + "/" + s.newID() + ext

	url, err := s.uploader.Upload(ctx, objectPath, contentType, body)
	if errors.Is(err, supabase.ErrNotConfigured) {
		return nil, apperrors.Internal("media uploads are not configured", err)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to upload media", err)
	}

	observability.LoggerFromContext(ctx).Info("media uploaded", "owner", owner, "path", objectPath, "content_type", contentType)
	return &models.MediaUpload{
		URL:      url,
		Path:     objectPath,
		Kind:     models.KindFromMIME(contentType),
		FileName: filepath.Base(fileName),
		FileType: contentType,
	}, nil
}

// Discard removes an upload that ended up unused. Failures are logged only.
func (s *MediaService) Discard(ctx context.Context, up *models.MediaUpload) {
	if up == nil || up.Path == "" {
		return
	}
	if err := s.uploader.Delete(ctx, up.Path); err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to discard upload", "path", up.Path, "error", err)
		return
	}
	observability.LoggerFromContext(ctx).Info("upload discarded", "path", up.Path)
}
