package storage

import (
	"context"
	"errors"
	"time"
)

type Store interface {
	// users
	CreateUser(ctx context.Context, username, passwordHash, role string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CountAdmins(ctx context.Context) (int64, error)

	// posts
	CreatePost(ctx context.Context, post *Post) (*Post, error)
	GetPostByID(ctx context.Context, id int64) (*Post, error)
	ListPosts(ctx context.Context) ([]*Post, error)
	UpdatePost(ctx context.Context, post *Post) (*Post, error)
	ClearPostImage(ctx context.Context, id int64) error
	DeletePost(ctx context.Context, id int64) error

	Close() error
}

var (
	ErrNotFound        = errors.New("record not found")
	ErrUniqueViolation = errors.New("unique constraint violation")
	ErrCheckViolation  = errors.New("check constraint violation")
)

type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Post is the single content entity behind every site section; which section
// renders it is decided by Type alone.
type Post struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Content     string     `db:"content" json:"content"`
	Type        *string    `db:"type" json:"type"`
	ImageURL    *string    `db:"image_url" json:"imageUrl"`
	VideoURL    *string    `db:"video_url" json:"videoUrl"`
	Links       *string    `db:"links" json:"links"`
	IsPublished bool       `db:"is_published" json:"isPublished"`
	PublishedAt *time.Time `db:"published_at" json:"publishedAt"`
	AuthorID    int64      `db:"author_id" json:"authorId"`
	AuthorName  string     `db:"author_name" json:"author"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}
