package loaded

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"cardsync/internal/cards"
	"cardsync/internal/config"
)

// Key identifies one loaded-card record.
type Key struct {
	Library string
	Series  string
	Season  int
	Episode int
}

// EpisodeKey returns the season/episode part of the key.
func (k Key) EpisodeKey() cards.EpisodeKey {
	return cards.EpisodeKey{Season: k.Season, Episode: k.Episode}
}

// Entry is one persisted card fingerprint. Filesize zero means the card must
// be re-uploaded regardless of the local artifact's size.
type Entry struct {
	Key
	Filesize  int64
	Spoiler   cards.Class
	UpdatedAt time.Time
}

// Forced reports whether the entry carries the force-reload sentinel.
func (e Entry) Forced() bool {
	return e.Filesize == 0
}

// Store manages loaded-card persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the loaded-cards database, takes the
// process lock, applies the schema, and imports the legacy map when present.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.LoadedDBPath()
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, errors.New("loaded-cards database is in use by another cardsync process")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	store.importLegacy(context.Background(), cfg.LegacyLoadedPath())
	return store, nil
}

// Close closes the database connection and releases the process lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

const entryColumns = "library, series, season, episode, filesize, spoiler, updated_at"

// Get fetches the entry for an exact key, or nil when none exists.
func (s *Store) Get(ctx context.Context, key Key) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM loaded_cards
         WHERE library = ? AND series = ? AND season = ? AND episode = ?`,
		key.Library, key.Series, key.Season, key.Episode,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// FindSeries returns every entry recorded for a series within a library.
func (s *Store) FindSeries(ctx context.Context, library, series string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM loaded_cards
         WHERE library = ? AND series = ?
         ORDER BY season, episode`,
		library, series,
	)
	if err != nil {
		return nil, fmt.Errorf("find series entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Upsert records a successful upload for a key, inserting the row when the
// episode has never been loaded before.
func (s *Store) Upsert(ctx context.Context, key Key, filesize int64, class cards.Class) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO loaded_cards (library, series, season, episode, filesize, spoiler, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (library, series, season, episode)
         DO UPDATE SET filesize = excluded.filesize, spoiler = excluded.spoiler, updated_at = excluded.updated_at`,
		key.Library, key.Series, key.Season, key.Episode, filesize, string(class), now,
	)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

// ForceInvalidate resets the recorded filesize to the reload sentinel,
// leaving the spoiler tag untouched. Invalidating a key with no entry is a
// no-op.
func (s *Store) ForceInvalidate(ctx context.Context, key Key) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE loaded_cards SET filesize = 0, updated_at = ?
         WHERE library = ? AND series = ? AND season = ? AND episode = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		key.Library, key.Series, key.Season, key.Episode,
	)
	if err != nil {
		return fmt.Errorf("invalidate entry: %w", err)
	}
	return nil
}

// List returns every entry in the store ordered by key.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM loaded_cards ORDER BY library, series, season, episode`,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Stats summarizes the store for diagnostic output.
type Stats struct {
	Entries int
	Series  int
	Forced  int
}

// Summarize counts entries, distinct series, and pending forced reloads.
func (s *Store) Summarize(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COUNT(DISTINCT library || '/' || series),
                COALESCE(SUM(CASE WHEN filesize = 0 THEN 1 ELSE 0 END), 0)
         FROM loaded_cards`,
	)
	if err := row.Scan(&stats.Entries, &stats.Series, &stats.Forced); err != nil {
		return Stats{}, fmt.Errorf("summarize store: %w", err)
	}
	return stats, nil
}

// Clear removes every entry from the store.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM loaded_cards`)
	if err != nil {
		return 0, fmt.Errorf("clear store: %w", err)
	}
	return res.RowsAffected()
}

// DeleteSeries removes every entry for one series within a library.
func (s *Store) DeleteSeries(ctx context.Context, library, series string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM loaded_cards WHERE library = ? AND series = ?`,
		library, series,
	)
	if err != nil {
		return 0, fmt.Errorf("delete series entries: %w", err)
	}
	return res.RowsAffected()
}

func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry      Entry
		spoilerRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&entry.Library, &entry.Series, &entry.Season, &entry.Episode,
		&entry.Filesize, &spoilerRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}

	class, err := cards.ParseClass(spoilerRaw)
	if err != nil {
		return nil, fmt.Errorf("entry %s/%s %d-%d: %w", entry.Library, entry.Series, entry.Season, entry.Episode, err)
	}
	entry.Spoiler = class

	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		entry.UpdatedAt = updated
	}
	return &entry, nil
}
