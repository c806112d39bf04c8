package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"sitecms/internal/storage"
)

// PostTypes is the closed set of presentation contexts a post can be tagged
// with. Anything else is normalized to unset, never stored as-is.
var PostTypes = map[string]struct{}{
	"slider":   {},
	"program":  {},
	"news":     {},
	"gallery":  {},
	"students": {},
	"partners": {},
}

// PostInput is the typed boundary between untyped multipart form data and the
// service. Handlers populate it; nothing downstream touches raw form values.
type PostInput struct {
	Title       string
	Content     string
	Type        string
	VideoURL    string
	Links       string
	IsPublished bool
}

func (in PostInput) validate() error {
	if in.Title == "" || in.Content == "" {
		return ErrMissingFields
	}
	return nil
}

// Upload carries one multipart file into the service.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Service is the only writer of post state. It keeps the repository and the
// asset store consistent: an image reference stored on a record always points
// at a file that was written first.
type Service struct {
	store  PostStore
	assets MediaStore
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store PostStore, assets MediaStore, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		assets: assets,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]*storage.Post, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	// listings never fail for individual malformed records
	for _, p := range posts {
		p.Type = normalizeType(p.Type)
	}
	return posts, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*storage.Post, error) {
	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Type = normalizeType(post.Type)
	return post, nil
}

// Create validates the input, saves the image first if one was supplied and
// only then inserts the record, so a failed save can never leave a post
// pointing at a file that does not exist.
func (s *Service) Create(ctx context.Context, authorID int64, in PostInput, upload *Upload) (*storage.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	post := &storage.Post{
		Title:       in.Title,
		Content:     in.Content,
		Type:        normalizeType(optional(in.Type)),
		VideoURL:    optional(in.VideoURL),
		Links:       optional(in.Links),
		IsPublished: in.IsPublished,
		AuthorID:    authorID,
	}
	if in.IsPublished {
		now := s.now()
		post.PublishedAt = &now
	}

	if upload != nil {
		key, err := s.assets.Store(ctx, upload.Filename, upload.Body)
		if err != nil {
			return nil, fmt.Errorf("saving image: %w", err)
		}
		post.ImageURL = &key
	}

	created, err := s.store.CreatePost(ctx, post)
	if err != nil {
		if post.ImageURL != nil {
			// the record never existed, so try not to leave its file behind
			if rmErr := s.assets.Remove(ctx, *post.ImageURL); rmErr != nil {
				s.logger.Warn("orphaned asset after failed create", "key", *post.ImageURL, "err", rmErr)
			}
		}
		return nil, err
	}
	return created, nil
}

// Update replaces the mutable fields of a post. A new image is saved before
// the old one is touched; failing to delete the old file is logged and
// swallowed because stale files must never block new content.
func (s *Service) Update(ctx context.Context, id int64, in PostInput, upload *Upload) (*storage.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	current, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	post := &storage.Post{
		ID:          id,
		Title:       in.Title,
		Content:     in.Content,
		Type:        normalizeType(optional(in.Type)),
		ImageURL:    current.ImageURL,
		VideoURL:    optional(in.VideoURL),
		Links:       optional(in.Links),
		IsPublished: in.IsPublished,
		AuthorID:    current.AuthorID,
	}

	// stamp on the Draft→Published transition, clear on the way back,
	// keep the original timestamp while staying published
	switch {
	case in.IsPublished && current.PublishedAt != nil:
		post.PublishedAt = current.PublishedAt
	case in.IsPublished:
		now := s.now()
		post.PublishedAt = &now
	}

	if upload != nil {
		key, err := s.assets.Store(ctx, upload.Filename, upload.Body)
		if err != nil {
			return nil, fmt.Errorf("saving image: %w", err)
		}

		if current.ImageURL != nil {
			if err := s.assets.Remove(ctx, *current.ImageURL); err != nil {
				s.logger.Warn("could not delete replaced asset", "post_id", id, "key", *current.ImageURL, "err", err)
			}
		}
		post.ImageURL = &key
	}

	return s.store.UpdatePost(ctx, post)
}

// DeleteImage removes a post's asset. The file goes first and a failure there
// is fatal: the record keeps its reference so it never points at nothing.
func (s *Service) DeleteImage(ctx context.Context, id int64) error {
	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return err
	}
	if post.ImageURL == nil {
		return ErrNoImage
	}

	if err := s.assets.Remove(ctx, *post.ImageURL); err != nil {
		return fmt.Errorf("deleting image file: %w", err)
	}

	return s.store.ClearPostImage(ctx, id)
}

// Delete removes a post and its asset. Unlike DeleteImage, a file that cannot
// be deleted does not save the record: a post must always be removable.
func (s *Service) Delete(ctx context.Context, id int64) error {
	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return err
	}

	if post.ImageURL != nil {
		if err := s.assets.Remove(ctx, *post.ImageURL); err != nil {
			s.logger.Warn("could not delete asset for removed post", "post_id", id, "key", *post.ImageURL, "err", err)
		}
	}

	return s.store.DeletePost(ctx, id)
}

// normalizeType maps anything outside the closed enumeration to unset.
func normalizeType(t *string) *string {
	if t == nil {
		return nil
	}
	if _, ok := PostTypes[*t]; !ok {
		return nil
	}
	return t
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
