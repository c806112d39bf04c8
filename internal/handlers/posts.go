package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"sitecms/internal/content"
	"sitecms/internal/storage"
	"sitecms/internal/telemetry"
)

// PostService is the slice of the content service this handler consumes.
type PostService interface {
	List(ctx context.Context) ([]*storage.Post, error)
	Create(ctx context.Context, authorID int64, in content.PostInput, upload *content.Upload) (*storage.Post, error)
	Update(ctx context.Context, id int64, in content.PostInput, upload *content.Upload) (*storage.Post, error)
	DeleteImage(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// PostHandler exposes the post CRUD surface consumed by the admin and public
// pages.
type PostHandler struct {
	Posts     PostService
	Logger    *slog.Logger
	Metrics   *telemetry.Metrics
	MaxUpload int64
}

func NewPostHandler(posts PostService, logger *slog.Logger, metrics *telemetry.Metrics, maxUpload int64) *PostHandler {
	return &PostHandler{
		Posts:     posts,
		Logger:    logger,
		Metrics:   metrics,
		MaxUpload: maxUpload,
	}
}

func (h *PostHandler) HandleList() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.Posts.List(r.Context())
		if err != nil {
			internalError(w, h.Logger, "Failed to fetch posts", err)
			return
		}

		if posts == nil {
			posts = []*storage.Post{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
	})
}

func (h *PostHandler) HandleCreate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in, upload, err := h.parsePostForm(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Malformed form data")
			return
		}

		// TODO take the author from the session once the admin surface sends
		// its credential on API calls
		const authorID = 1

		post, err := h.Posts.Create(r.Context(), authorID, in, upload)
		if err != nil {
			switch {
			case errors.Is(err, content.ErrMissingFields):
				writeMessage(w, http.StatusBadRequest, "Title and content are required")
			default:
				internalError(w, h.Logger, "Failed to create post", err)
			}
			return
		}

		if upload != nil {
			h.Metrics.UploadsTotal.Add(r.Context(), 1)
		}
		h.Logger.Info("post created", "id", post.ID, "title", post.Title)

		writeJSON(w, http.StatusCreated, map[string]any{"post": post})
	})
}

func (h *PostHandler) HandleUpdate() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid Post ID")
			return
		}

		in, upload, err := h.parsePostForm(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Malformed form data")
			return
		}

		post, err := h.Posts.Update(r.Context(), id, in, upload)
		if err != nil {
			switch {
			case errors.Is(err, content.ErrMissingFields):
				writeMessage(w, http.StatusBadRequest, "Title and content are required")
			case errors.Is(err, storage.ErrNotFound):
				writeMessage(w, http.StatusNotFound, "Post not found")
			default:
				internalError(w, h.Logger, "Failed to update post", err)
			}
			return
		}

		if upload != nil {
			h.Metrics.UploadsTotal.Add(r.Context(), 1)
		}
		h.Logger.Info("post updated", "id", post.ID)

		writeJSON(w, http.StatusOK, map[string]any{"post": post})
	})
}

func (h *PostHandler) HandleDelete() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid Post ID")
			return
		}

		if err := h.Posts.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				writeMessage(w, http.StatusNotFound, "Post not found")
			default:
				internalError(w, h.Logger, "Failed to delete post", err)
			}
			return
		}

		h.Logger.Info("post deleted", "id", id)
		writeMessage(w, http.StatusOK, "Post deleted successfully")
	})
}

func (h *PostHandler) HandleDeleteImage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid Post ID")
			return
		}

		if err := h.Posts.DeleteImage(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				writeMessage(w, http.StatusNotFound, "Post not found")
			case errors.Is(err, content.ErrNoImage):
				writeMessage(w, http.StatusBadRequest, "Post has no image to delete")
			default:
				internalError(w, h.Logger, "Failed to delete image file", err)
			}
			return
		}

		h.Metrics.AssetDeletesTotal.Add(r.Context(), 1)
		h.Logger.Info("post image deleted", "id", id)
		writeMessage(w, http.StatusOK, "Image deleted successfully")
	})
}

// parsePostForm converts the untyped multipart payload into the typed input
// the service accepts. No raw form value travels past this point.
func (h *PostHandler) parsePostForm(r *http.Request) (content.PostInput, *content.Upload, error) {
	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		return content.PostInput{}, nil, err
	}

	in := content.PostInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Content:     strings.TrimSpace(r.FormValue("content")),
		Type:        strings.TrimSpace(r.FormValue("type")),
		VideoURL:    strings.TrimSpace(r.FormValue("videoUrl")),
		Links:       strings.TrimSpace(r.FormValue("links")),
		IsPublished: r.FormValue("isPublished") == "on",
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil, nil
		}
		return content.PostInput{}, nil, err
	}

	// an empty file part means no upload
	if header.Size == 0 {
		file.Close()
		return in, nil, nil
	}

	h.Metrics.UploadBytesTotal.Add(r.Context(), header.Size)

	return in, &content.Upload{
		Filename: header.Filename,
		Body:     file,
	}, nil
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
