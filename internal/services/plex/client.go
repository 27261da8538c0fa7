package plex

import (
	"context"
	"errors"
)

// ErrNotFound reports that Plex answered but the requested object does not
// exist. Transport and server failures never wrap this sentinel.
var ErrNotFound = errors.New("not found in plex")

// Library is one Plex library section.
type Library struct {
	Key   string
	Title string
}

// Show is one series within a library.
type Show struct {
	RatingKey string
	Title     string
}

// Episode is one episode as Plex reports it. Watched derives from the
// server-side view count.
type Episode struct {
	RatingKey string
	Season    int
	Number    int
	Watched   bool
}

// Client is the capability surface the sync engine consumes. Implementations
// must return ErrNotFound (possibly wrapped) for lookup misses.
type Client interface {
	Section(ctx context.Context, name string) (*Library, error)
	ShowByGUID(ctx context.Context, library *Library, guid string) (*Show, error)
	ShowByTitle(ctx context.Context, library *Library, title string) (*Show, error)
	Episodes(ctx context.Context, show *Show) ([]Episode, error)
	UploadPoster(ctx context.Context, episode Episode, filePath string) error
	DeletePoster(ctx context.Context, episode Episode) error
}
