package content

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"sitecms/internal/storage"
)

func TestAssetLibraryStoreNaming(t *testing.T) {
	t.Parallel()

	backend := storage.NewLocalStorage(t.TempDir())
	lib := NewAssetLibrary(backend)
	lib.now = func() time.Time { return time.UnixMilli(1700000000000) }

	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"plain name", "photo.png", "1700000000000-photo.png"},
		{"whitespace collapsed", "open  day poster.jpg", "1700000000000-open-day-poster.jpg"},
		{"path stripped to base", "some/dir/banner.webp", "1700000000000-banner.webp"},
		{"surrounding space trimmed", "  cover.png  ", "1700000000000-cover.png"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			key, err := lib.Store(ctx, tc.filename, strings.NewReader("data"))
			if err != nil {
				t.Fatalf("store failed: %v", err)
			}
			if key != tc.want {
				t.Errorf("want key %q, got %q", tc.want, key)
			}
			if !lib.Exists(ctx, key) {
				t.Errorf("stored asset %q does not exist", key)
			}
		})
	}
}

func TestAssetLibraryStoreRejectsEmptyName(t *testing.T) {
	t.Parallel()

	lib := NewAssetLibrary(storage.NewLocalStorage(t.TempDir()))

	for _, name := range []string{"", "   ", "."} {
		if _, err := lib.Store(context.Background(), name, strings.NewReader("x")); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestAssetLibraryKeyPattern(t *testing.T) {
	t.Parallel()

	lib := NewAssetLibrary(storage.NewLocalStorage(t.TempDir()))

	key, err := lib.Store(context.Background(), "photo.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}

	if ok := regexp.MustCompile(`^\d+-photo\.png$`).MatchString(key); !ok {
		t.Errorf("key %q does not match <millis>-<name>", key)
	}
}

func TestAssetLibraryRemove(t *testing.T) {
	t.Parallel()

	lib := NewAssetLibrary(storage.NewLocalStorage(t.TempDir()))
	ctx := context.Background()

	key, err := lib.Store(ctx, "fleeting.png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}

	if err := lib.Remove(ctx, key); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if lib.Exists(ctx, key) {
		t.Error("expected asset to be gone")
	}

	if err := lib.Remove(ctx, key); !errors.Is(err, storage.ErrAssetNotFound) {
		t.Errorf("expected ErrAssetNotFound, got: %v", err)
	}
}

func TestAssetLibraryRejectsTraversalKeys(t *testing.T) {
	t.Parallel()

	lib := NewAssetLibrary(storage.NewLocalStorage(t.TempDir()))
	ctx := context.Background()

	keys := []string{
		"",
		"../secret.png",
		"a/b.png",
		`a\b.png`,
		"..",
	}

	for _, key := range keys {
		if err := lib.Remove(ctx, key); !errors.Is(err, storage.ErrInvalidPath) {
			t.Errorf("remove %q: expected ErrInvalidPath, got: %v", key, err)
		}
		if _, err := lib.Open(ctx, key); !errors.Is(err, storage.ErrInvalidPath) {
			t.Errorf("open %q: expected ErrInvalidPath, got: %v", key, err)
		}
		if lib.Exists(ctx, key) {
			t.Errorf("exists %q: expected false", key)
		}
	}
}
