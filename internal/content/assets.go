package content

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"sitecms/internal/storage"
)

var whitespace = regexp.MustCompile(`\s+`)

// AssetLibrary owns the naming and lifecycle of uploaded binaries. The
// identifier space is flat generated names, fully separate from post ids.
type AssetLibrary struct {
	store storage.Provider
	now   func() time.Time
}

func NewAssetLibrary(store storage.Provider) *AssetLibrary {
	return &AssetLibrary{
		store: store,
		now:   time.Now,
	}
}

// Store writes the upload under a generated collision-resistant name and
// returns it. The name is <unix-millis>-<original name> with whitespace runs
// collapsed to dashes, so repeated uploads of the same file never clash.
func (a *AssetLibrary) Store(ctx context.Context, originalName string, body io.Reader) (string, error) {
	base := filepath.Base(strings.TrimSpace(originalName))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "", fmt.Errorf("store asset: invalid name %q", originalName)
	}

	key := fmt.Sprintf("%d-%s", a.now().UnixMilli(), whitespace.ReplaceAllString(base, "-"))

	if err := a.store.Save(ctx, key, body); err != nil {
		return "", fmt.Errorf("store asset %q: %w", key, err)
	}
	return key, nil
}

// Remove deletes a previously stored asset. Keys that could address anything
// outside the storage area are rejected before the backend sees them.
func (a *AssetLibrary) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return a.store.Delete(ctx, key)
}

func (a *AssetLibrary) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return a.store.Open(ctx, key)
}

func (a *AssetLibrary) Exists(ctx context.Context, key string) bool {
	if validateKey(key) != nil {
		return false
	}
	return a.store.Exists(ctx, key)
}

func validateKey(key string) error {
	if key == "" ||
		strings.ContainsAny(key, `/\`) ||
		strings.Contains(key, "..") {
		return fmt.Errorf("asset key %q: %w", key, storage.ErrInvalidPath)
	}
	return nil
}
