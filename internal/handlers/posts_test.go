package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"sitecms/internal/content"
	"sitecms/internal/storage"
	"sitecms/internal/telemetry"
)

type fakePostService struct {
	posts map[int64]*storage.Post

	lastAuthorID int64
	lastInput    content.PostInput
	lastUpload   *content.Upload

	createErr      error
	updateErr      error
	deleteErr      error
	deleteImageErr error
}

func newFakePostService() *fakePostService {
	return &fakePostService{posts: make(map[int64]*storage.Post)}
}

func (f *fakePostService) List(_ context.Context) ([]*storage.Post, error) {
	var out []*storage.Post
	for _, p := range f.posts {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePostService) Create(_ context.Context, authorID int64, in content.PostInput, upload *content.Upload) (*storage.Post, error) {
	f.lastAuthorID = authorID
	f.lastInput = in
	f.lastUpload = upload
	if f.createErr != nil {
		return nil, f.createErr
	}
	if upload != nil {
		io.Copy(io.Discard, upload.Body)
	}
	post := &storage.Post{ID: int64(len(f.posts) + 1), Title: in.Title, Content: in.Content, AuthorID: authorID}
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakePostService) Update(_ context.Context, id int64, in content.PostInput, upload *content.Upload) (*storage.Post, error) {
	f.lastInput = in
	f.lastUpload = upload
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	post.Title = in.Title
	post.Content = in.Content
	return post, nil
}

func (f *fakePostService) DeleteImage(_ context.Context, id int64) error {
	if f.deleteImageErr != nil {
		return f.deleteImageErr
	}
	if _, ok := f.posts[id]; !ok {
		return storage.ErrNotFound
	}
	return nil
}

func (f *fakePostService) Delete(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func testPostHandler(t *testing.T, svc PostService) *PostHandler {
	t.Helper()

	metrics, err := telemetry.NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("could not create metrics: %v", err)
	}
	return NewPostHandler(svc, slog.New(slog.DiscardHandler), metrics, 10<<20)
}

// postForm builds a multipart body the way the admin page submits it.
func postForm(t *testing.T, fields map[string]string, filename string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("could not write field %q: %v", k, err)
		}
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("could not create file part: %v", err)
		}
		part.Write([]byte("fake image bytes"))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	return body
}

func TestHandleList(t *testing.T) {
	t.Parallel()

	t.Run("empty store yields empty array", func(t *testing.T) {
		h := testPostHandler(t, newFakePostService())

		r := httptest.NewRequest(http.MethodGet, "/posts", nil)
		w := httptest.NewRecorder()
		h.HandleList().ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", w.Code)
		}

		body := decodeBody(t, w)
		posts, ok := body["posts"].([]any)
		if !ok {
			t.Fatalf("want a posts array, got %T", body["posts"])
		}
		if len(posts) != 0 {
			t.Errorf("want empty array, got %d entries", len(posts))
		}
	})

	t.Run("returns stored posts", func(t *testing.T) {
		svc := newFakePostService()
		svc.posts[1] = &storage.Post{ID: 1, Title: "one", Content: "c", AuthorID: 1}

		h := testPostHandler(t, svc)

		r := httptest.NewRequest(http.MethodGet, "/posts", nil)
		w := httptest.NewRecorder()
		h.HandleList().ServeHTTP(w, r)

		body := decodeBody(t, w)
		posts := body["posts"].([]any)
		if len(posts) != 1 {
			t.Fatalf("want 1 post, got %d", len(posts))
		}
	})
}

func TestHandleCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates from multipart form", func(t *testing.T) {
		svc := newFakePostService()
		h := testPostHandler(t, svc)

		buf, contentType := postForm(t, map[string]string{
			"title":       "Open day",
			"content":     "Doors open at nine.",
			"type":        "news",
			"isPublished": "on",
		}, "flyer.png")

		r := httptest.NewRequest(http.MethodPost, "/posts", buf)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		h.HandleCreate().ServeHTTP(w, r)

		if w.Code != http.StatusCreated {
			t.Fatalf("want 201, got %d: %s", w.Code, w.Body.String())
		}

		if svc.lastInput.Title != "Open day" {
			t.Errorf("want title passed through, got %q", svc.lastInput.Title)
		}
		if !svc.lastInput.IsPublished {
			t.Error("isPublished=on should map to true")
		}
		if svc.lastUpload == nil || svc.lastUpload.Filename != "flyer.png" {
			t.Errorf("want upload flyer.png, got %+v", svc.lastUpload)
		}
		if svc.lastAuthorID != 1 {
			t.Errorf("want author id 1, got %d", svc.lastAuthorID)
		}

		body := decodeBody(t, w)
		if _, ok := body["post"]; !ok {
			t.Error("response should carry the created post")
		}
	})

	t.Run("form without file creates without upload", func(t *testing.T) {
		svc := newFakePostService()
		h := testPostHandler(t, svc)

		buf, contentType := postForm(t, map[string]string{
			"title":   "No image",
			"content": "text only",
		}, "")

		r := httptest.NewRequest(http.MethodPost, "/posts", buf)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		h.HandleCreate().ServeHTTP(w, r)

		if w.Code != http.StatusCreated {
			t.Fatalf("want 201, got %d", w.Code)
		}
		if svc.lastUpload != nil {
			t.Errorf("want no upload, got %+v", svc.lastUpload)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := newFakePostService()
		svc.createErr = content.ErrMissingFields
		h := testPostHandler(t, svc)

		buf, contentType := postForm(t, map[string]string{"title": "only title"}, "")

		r := httptest.NewRequest(http.MethodPost, "/posts", buf)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		h.HandleCreate().ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", w.Code)
		}
		if body := decodeBody(t, w); body["message"] != "Title and content are required" {
			t.Errorf("unexpected message: %v", body["message"])
		}
	})

	t.Run("non-multipart body", func(t *testing.T) {
		h := testPostHandler(t, newFakePostService())

		r := httptest.NewRequest(http.MethodPost, "/posts", bytes.NewReader([]byte("not a form")))
		w := httptest.NewRecorder()
		h.HandleCreate().ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", w.Code)
		}
	})

	t.Run("service failure", func(t *testing.T) {
		svc := newFakePostService()
		svc.createErr = errors.New("db down")
		h := testPostHandler(t, svc)

		buf, contentType := postForm(t, map[string]string{"title": "x", "content": "y"}, "")

		r := httptest.NewRequest(http.MethodPost, "/posts", buf)
		r.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		h.HandleCreate().ServeHTTP(w, r)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("want 500, got %d", w.Code)
		}
	})
}

func TestHandleUpdate(t *testing.T) {
	t.Parallel()

	t.Run("updates existing post", func(t *testing.T) {
		svc := newFakePostService()
		svc.posts[3] = &storage.Post{ID: 3, Title: "old", Content: "old", AuthorID: 1}
		h := testPostHandler(t, svc)

		buf, contentType := postForm(t, map[string]string{"title": "new", "content": "new body"}, "")

		r := httptest.NewRequest(http.MethodPut, "/posts/3", buf)
		r.Header.Set("Content-Type", contentType)
		r.SetPathValue("id", "3")
		w := httptest.NewRecorder()
		h.HandleUpdate().ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("want 200, got %d: %s", w.Code, w.Body.String())
		}
		if svc.posts[3].Title != "new" {
			t.Errorf("want title updated, got %q", svc.posts[3].Title)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		h := testPostHandler(t, newFakePostService())

		r := httptest.NewRequest(http.MethodPut, "/posts/abc", nil)
		r.SetPathValue("id", "abc")
		w := httptest.NewRecorder()
		h.HandleUpdate().ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", w.Code)
		}
		if body := decodeBody(t, w); body["message"] != "Invalid Post ID" {
			t.Errorf("unexpected message: %v", body["message"])
		}
	})

	t.Run("missing post", func(t *testing.T) {
		h := testPostHandler(t, newFakePostService())

		buf, contentType := postForm(t, map[string]string{"title": "x", "content": "y"}, "")

		r := httptest.NewRequest(http.MethodPut, "/posts/404", buf)
		r.Header.Set("Content-Type", contentType)
		r.SetPathValue("id", "404")
		w := httptest.NewRecorder()
		h.HandleUpdate().ServeHTTP(w, r)

		if w.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", w.Code)
		}
	})
}

func TestHandleDelete(t *testing.T) {
	t.Parallel()

	t.Run("deletes existing post", func(t *testing.T) {
		svc := newFakePostService()
		svc.posts[5] = &storage.Post{ID: 5, Title: "t", Content: "c", AuthorID: 1}
		h := testPostHandler(t, svc)

		r := httptest.NewRequest(http.MethodDelete, "/posts/5", nil)
		r.SetPathValue("id", "5")
		w := httptest.NewRecorder()
		h.HandleDelete().ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("want 200, got %d", w.Code)
		}
		if body := decodeBody(t, w); body["message"] != "Post deleted successfully" {
			t.Errorf("unexpected message: %v", body["message"])
		}
		if len(svc.posts) != 0 {
			t.Error("post should be gone")
		}
	})

	t.Run("missing post", func(t *testing.T) {
		h := testPostHandler(t, newFakePostService())

		r := httptest.NewRequest(http.MethodDelete, "/posts/404", nil)
		r.SetPathValue("id", "404")
		w := httptest.NewRecorder()
		h.HandleDelete().ServeHTTP(w, r)

		if w.Code != http.StatusNotFound {
			t.Fatalf("want 404, got %d", w.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		h := testPostHandler(t, newFakePostService())

		r := httptest.NewRequest(http.MethodDelete, "/posts/x", nil)
		r.SetPathValue("id", "x")
		w := httptest.NewRecorder()
		h.HandleDelete().ServeHTTP(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("want 400, got %d", w.Code)
		}
	})
}

func TestHandleDeleteImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantMsg    string
	}{
		{"success", nil, http.StatusOK, "Image deleted successfully"},
		{"no image", content.ErrNoImage, http.StatusBadRequest, "Post has no image to delete"},
		{"missing post", storage.ErrNotFound, http.StatusNotFound, "Post not found"},
		{"file delete failure", errors.New("backend down"), http.StatusInternalServerError, "Failed to delete image file"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newFakePostService()
			svc.posts[9] = &storage.Post{ID: 9, Title: "t", Content: "c", AuthorID: 1}
			svc.deleteImageErr = tc.serviceErr
			h := testPostHandler(t, svc)

			r := httptest.NewRequest(http.MethodDelete, "/posts/9/image", nil)
			r.SetPathValue("id", "9")
			w := httptest.NewRecorder()
			h.HandleDeleteImage().ServeHTTP(w, r)

			if w.Code != tc.wantStatus {
				t.Fatalf("want %d, got %d", tc.wantStatus, w.Code)
			}
			if body := decodeBody(t, w); body["message"] != tc.wantMsg {
				t.Errorf("want message %q, got %v", tc.wantMsg, body["message"])
			}
		})
	}
}
