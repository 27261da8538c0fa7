package cards

import (
	"fmt"
	"strings"
)

// SeriesInfo identifies a series both locally and on the remote server.
// FullName is the disambiguated display form (typically "Name (Year)") and is
// the canonical key in the loaded store.
type SeriesInfo struct {
	Name     string
	FullName string
	TVDBID   string
	TMDBID   string
}

// String returns the display form used in logs.
func (s SeriesInfo) String() string {
	if s.FullName != "" {
		return s.FullName
	}
	return s.Name
}

// EpisodeKey is the season/episode index pair identifying one episode within
// a series.
type EpisodeKey struct {
	Season  int
	Episode int
}

// String renders the key in the "season-episode" form the legacy store used.
func (k EpisodeKey) String() string {
	return fmt.Sprintf("%d-%d", k.Season, k.Episode)
}

// Code renders the key as an SxxEyy episode code.
func (k EpisodeKey) Code() string {
	return fmt.Sprintf("S%02dE%02d", k.Season, k.Episode)
}

// ParseEpisodeKey parses the "season-episode" form.
func ParseEpisodeKey(value string) (EpisodeKey, error) {
	parts := strings.SplitN(strings.TrimSpace(value), "-", 2)
	if len(parts) != 2 {
		return EpisodeKey{}, fmt.Errorf("malformed episode key %q", value)
	}
	var key EpisodeKey
	if _, err := fmt.Sscanf(parts[0], "%d", &key.Season); err != nil {
		return EpisodeKey{}, fmt.Errorf("malformed season in episode key %q", value)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &key.Episode); err != nil {
		return EpisodeKey{}, fmt.Errorf("malformed episode in episode key %q", value)
	}
	return key, nil
}

// Episode is one locally known episode of a series. CardPath is empty until
// the renderer has produced an artifact. Watched is populated from the remote
// server during a sync pass and never persisted. Class is the spoil class the
// local artifact currently represents; the state machine rewrites it when the
// required class changes.
type Episode struct {
	Key      EpisodeKey
	CardPath string
	Watched  bool
	Class    Class
}

// HasCard reports whether a local artifact exists for this episode.
func (e *Episode) HasCard() bool {
	return e != nil && e.CardPath != ""
}

// Series bundles a series identity with its locally known episodes.
type Series struct {
	Info     SeriesInfo
	Episodes map[EpisodeKey]*Episode
}
