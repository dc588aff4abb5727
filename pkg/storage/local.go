package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores files on disk and serves them under a public URL prefix.
type Local struct {
	root      string
	urlPrefix string
}

// NewLocal creates the upload directory if needed.
func NewLocal(root, urlPrefix string) (*Local, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("upload directory must not be empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}

	return &Local{root: root, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// Root returns the directory files are written to.
func (l *Local) Root() string {
	return l.root
}

// Upload writes reader to a unique file and returns its public URL and storage key.
func (l *Local) Upload(ctx context.Context, name string, reader io.Reader) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	key := fmt.Sprintf("%s_%s%s", uuid.NewString(), base, ext)

	dst, err := os.OpenFile(filepath.Join(l.root, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, reader); err != nil {
		_ = os.Remove(dst.Name())
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return path.Join(l.urlPrefix, key), key, nil
}

// Delete removes a stored file. Missing files are not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean := filepath.Base(filepath.Clean(key))
	if clean == "." || clean == string(filepath.Separator) || clean != key {
		return fmt.Errorf("invalid storage key %q", key)
	}

	if err := os.Remove(filepath.Join(l.root, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
