package cards

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// seriesMetaFile is an optional per-series sidecar carrying identifiers the
// directory name cannot express.
const seriesMetaFile = "series.toml"

var (
	cardFilePattern   = regexp.MustCompile(`(?i)^s(\d+)e(\d+)\.(jpg|jpeg|png|webp)$`)
	yearSuffixPattern = regexp.MustCompile(`^(.*\S)\s+\((\d{4})\)$`)
)

type seriesMeta struct {
	Name   string `toml:"name"`
	TVDBID string `toml:"tvdb_id"`
	TMDBID string `toml:"tmdb_id"`
}

// ScanLibrary discovers the series and rendered cards beneath a library's
// card directory. Each immediate subdirectory is one series named by its
// disambiguated full name; card files are SxxEyy images at any depth below
// it. Series with no card files are still returned so a sync pass can report
// them, with an empty episode map.
func ScanLibrary(dir string) ([]*Series, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read card directory %q: %w", dir, err)
	}

	var series []*Series
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		s, err := scanSeries(filepath.Join(dir, entry.Name()), entry.Name())
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Info.FullName < series[j].Info.FullName
	})
	return series, nil
}

func scanSeries(dir, fullName string) (*Series, error) {
	info := SeriesInfo{
		Name:     shortName(fullName),
		FullName: fullName,
	}
	if err := applySeriesMeta(dir, &info); err != nil {
		return nil, err
	}

	episodes := make(map[EpisodeKey]*Episode)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		match := cardFilePattern.FindStringSubmatch(d.Name())
		if match == nil {
			return nil
		}
		season, _ := strconv.Atoi(match[1])
		episode, _ := strconv.Atoi(match[2])
		key := EpisodeKey{Season: season, Episode: episode}
		episodes[key] = &Episode{
			Key:      key,
			CardPath: path,
			Class:    ClassSpoiled,
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan series %q: %w", fullName, walkErr)
	}

	return &Series{Info: info, Episodes: episodes}, nil
}

func applySeriesMeta(dir string, info *SeriesInfo) error {
	data, err := os.ReadFile(filepath.Join(dir, seriesMetaFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s for %q: %w", seriesMetaFile, info.FullName, err)
	}

	var meta seriesMeta
	if err := toml.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("parse %s for %q: %w", seriesMetaFile, info.FullName, err)
	}
	if name := strings.TrimSpace(meta.Name); name != "" {
		info.Name = name
	}
	info.TVDBID = strings.TrimSpace(meta.TVDBID)
	info.TMDBID = strings.TrimSpace(meta.TMDBID)
	return nil
}

// shortName strips a trailing year disambiguator from a series directory
// name, so "Breaking Bad (2008)" resolves by "Breaking Bad" first.
func shortName(fullName string) string {
	if match := yearSuffixPattern.FindStringSubmatch(fullName); match != nil {
		return match[1]
	}
	return fullName
}
