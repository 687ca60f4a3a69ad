package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// TeamLogoKey builds a fresh object key for a team logo of the given content type.
func TeamLogoKey(contentType string) (string, error) {
	ext, err := ExtensionFromContentType(contentType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("logos/teams/%s%s", uuid.NewString(), ext), nil
}

func ExtensionFromContentType(contentType string) (string, error) {
	// Параметры вида "; charset=..." не влияют на расширение
	contentType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])

	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && parts[0] == "image" && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: '%s'", contentType)
	}
}
