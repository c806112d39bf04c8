package content

import (
	"context"
	"io"

	"sitecms/internal/storage"
)

// PostStore is the slice of the repository the content service writes through.
type PostStore interface {
	CreatePost(ctx context.Context, post *storage.Post) (*storage.Post, error)
	GetPostByID(ctx context.Context, id int64) (*storage.Post, error)
	ListPosts(ctx context.Context) ([]*storage.Post, error)
	UpdatePost(ctx context.Context, post *storage.Post) (*storage.Post, error)
	ClearPostImage(ctx context.Context, id int64) error
	DeletePost(ctx context.Context, id int64) error
}

// MediaStore defines the asset operations the content service depends on.
type MediaStore interface {
	Store(ctx context.Context, originalName string, body io.Reader) (string, error)
	Remove(ctx context.Context, key string) error
}
