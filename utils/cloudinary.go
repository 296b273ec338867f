package utils

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	config "github.com/phillip/event-booking-go/config"
)

// MediaStore uploads event images to a Cloudinary folder.
type MediaStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewMediaStore(cfg config.CloudinaryConfig) (*MediaStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	folder := cfg.Folder
	if folder == "" {
		folder = "events"
	}
	return &MediaStore{cld: cld, folder: folder}, nil
}

// Upload stores file and returns its secure URL.
func (m *MediaStore) Upload(ctx context.Context, file io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	uploadResp, err := m.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder: m.folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if uploadResp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", uploadResp.Error.Message)
	}

	return uploadResp.SecureURL, nil
}

// Delete removes an image given the full URL Upload returned.
func (m *MediaStore) Delete(ctx context.Context, imageURL string) error {
	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = m.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("delete error: %w", err)
	}

	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// extractPublicID maps
// https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg
// to events/abc123.
func extractPublicID(imageURL string) (string, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	start := -1
	for i, part := range parts {
		if part == "upload" {
			start = i + 1
			break
		}
	}
	if start < 0 || start >= len(parts) {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	rest := parts[start:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}
