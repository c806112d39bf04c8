package content

import "errors"

var (
	// ErrMissingFields is returned when title or content is empty.
	ErrMissingFields = errors.New("title and content are required")
	// ErrNoImage is returned when an image operation targets a post without one.
	ErrNoImage = errors.New("post has no image")
)
