package loaded

import (
	"context"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"cardsync/internal/cards"
)

// legacyMap mirrors the pre-database loaded_cards.yml layout:
// sizes -> library -> series -> "season-episode" -> filesize.
type legacyMap struct {
	Sizes map[string]map[string]map[string]int64 `yaml:"sizes"`
}

// importLegacy moves the legacy flat-file map into the database and deletes
// the file. The import is best-effort: any read or parse failure leaves the
// store untouched and the file in place for manual inspection. All imported
// rows are tagged spoiled since the legacy format never tracked spoil class.
func (s *Store) importLegacy(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var legacy legacyMap
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		return
	}

	type legacyEntry struct {
		key      Key
		filesize int64
	}
	var entries []legacyEntry
	for libraryName, library := range legacy.Sizes {
		for seriesName, series := range library {
			for episodeKey, filesize := range series {
				parsed, err := cards.ParseEpisodeKey(episodeKey)
				if err != nil {
					return
				}
				entries = append(entries, legacyEntry{
					key: Key{
						Library: libraryName,
						Series:  seriesName,
						Season:  parsed.Season,
						Episode: parsed.Episode,
					},
					filesize: filesize,
				})
			}
		}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, entry := range entries {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO loaded_cards (library, series, season, episode, filesize, spoiler, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT (library, series, season, episode) DO NOTHING`,
			entry.key.Library, entry.key.Series, entry.key.Season, entry.key.Episode,
			entry.filesize, string(cards.ClassSpoiled), now,
		); err != nil {
			return
		}
	}

	_ = os.Remove(path)
}
