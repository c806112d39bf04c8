package sqlite

import (
	"context"
	"fmt"

	"sitecms/internal/storage"
)

func (s *Store) CreatePost(ctx context.Context, post *storage.Post) (*storage.Post, error) {
	query := `INSERT INTO posts (title, content, type, image_url, video_url, links, is_published, published_at, author_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	var id int64
	err := s.db.GetContext(ctx, &id, query,
		post.Title, post.Content, post.Type, post.ImageURL, post.VideoURL,
		post.Links, post.IsPublished, post.PublishedAt, post.AuthorID,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create post %q: %w", post.Title, mapSqlError(err))
	}

	// re-read through the author join so the caller gets the display name
	return s.GetPostByID(ctx, id)
}

func (s *Store) GetPostByID(ctx context.Context, id int64) (*storage.Post, error) {
	query := `SELECT p.*, COALESCE(u.username, 'Unknown') as author_name
		FROM posts AS p
		LEFT JOIN users AS u ON p.author_id = u.id
		WHERE p.id = ?
		LIMIT 1`

	var post storage.Post
	if err := s.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, fmt.Errorf("cannot find post id %d: %w", id, mapSqlError(err))
	}
	return &post, nil
}

// ListPosts returns every post with its author resolved to a display name in
// the same query, so the author lookup cost is paid once per listing.
func (s *Store) ListPosts(ctx context.Context) ([]*storage.Post, error) {
	query := `SELECT p.*, COALESCE(u.username, 'Unknown') as author_name
		FROM posts AS p
		LEFT JOIN users AS u ON p.author_id = u.id
		ORDER BY p.created_at DESC, p.id DESC`

	var posts []*storage.Post
	if err := s.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", mapSqlError(err))
	}
	return posts, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *storage.Post) (*storage.Post, error) {
	query := `UPDATE posts
		SET title = ?, content = ?, type = ?, image_url = ?, video_url = ?, links = ?, is_published = ?, published_at = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		post.Title, post.Content, post.Type, post.ImageURL, post.VideoURL,
		post.Links, post.IsPublished, post.PublishedAt, post.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot update post id %d: %w", post.ID, mapSqlError(err))
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, storage.ErrNotFound
	}

	return s.GetPostByID(ctx, post.ID)
}

func (s *Store) ClearPostImage(ctx context.Context, id int64) error {
	query := `UPDATE posts SET image_url = NULL
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("could not clear post image: %w", mapSqlError(err))
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	query := `DELETE FROM posts
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("could not delete post: %w", mapSqlError(err))
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}

	return nil
}
