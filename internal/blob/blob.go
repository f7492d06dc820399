// Package blob stores uploaded photos and hands back the URL they are served from.
package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when no object exists at a path.
var ErrNotFound = errors.New("blob: not found")

// Object is a stored blob.
type Object struct {
	Path        string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Store uploads, serves and deletes blobs by path.
type Store interface {
	// Upload writes data at path, replacing any previous object, and returns its public URL.
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
	Open(ctx context.Context, path string) (Object, error)
	Delete(ctx context.Context, path string) error
}

// DecodeDataURL parses a base64 data URL of the form data:<mime>;base64,<payload>.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("data URL has no payload")
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, errors.New("data URL is not base64 encoded")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return contentType, data, nil
}

// EncodeDataURL is the inverse of DecodeDataURL.
func EncodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// URL joins a public base URL and a blob path.
func URL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/blobs/" + strings.TrimLeft(path, "/")
}

// Extension picks a file extension for a content type.
func Extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
