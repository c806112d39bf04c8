package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"sitecms/internal/storage"
)

// AssetReader is the read side of the asset library.
type AssetReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// AssetHandler streams stored uploads by their generated name.
type AssetHandler struct {
	Assets AssetReader
	Logger *slog.Logger
}

func (h *AssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("name")

	reader, err := h.Assets.Open(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAssetNotFound), errors.Is(err, storage.ErrInvalidPath):
			http.NotFound(w, r)
		default:
			h.Logger.Error("failed to open asset", "key", key, "err", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}
	defer reader.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(key))
	if mimeType == "" {
		mimeType = "application/octet-stream" // fallback
	}
	w.Header().Set("Content-Type", mimeType)

	if _, err := io.Copy(w, reader); err != nil {
		h.Logger.Warn("stream interrupted", "key", key, "err", err)
	}
}
