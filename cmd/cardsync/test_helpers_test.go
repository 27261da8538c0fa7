package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	cardsDir   string
	plex       *fakePlexServer
}

// fakePlexServer emulates the small Plex API surface the sync pass touches:
// one "TV" section containing one show with one episode.
type fakePlexServer struct {
	server *httptest.Server

	mu        sync.Mutex
	watched   bool
	uploads   []string
	deletions []string
}

func newFakePlexServer(t *testing.T) *fakePlexServer {
	t.Helper()

	f := &fakePlexServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/library/sections", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"MediaContainer": map[string]any{
				"Directory": []map[string]any{{"key": "1", "title": "TV"}},
			},
		})
	})
	mux.HandleFunc("/library/sections/1/all", func(w http.ResponseWriter, r *http.Request) {
		var metadata []map[string]any
		if strings.EqualFold(r.URL.Query().Get("title"), "Show") {
			metadata = append(metadata, map[string]any{"ratingKey": "10", "title": "Show"})
		}
		writeJSON(t, w, map[string]any{
			"MediaContainer": map[string]any{"Metadata": metadata},
		})
	})
	mux.HandleFunc("/library/metadata/10/allLeaves", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		viewCount := 0
		if f.watched {
			viewCount = 1
		}
		f.mu.Unlock()
		writeJSON(t, w, map[string]any{
			"MediaContainer": map[string]any{
				"Metadata": []map[string]any{
					{"ratingKey": "101", "parentIndex": 1, "index": 1, "viewCount": viewCount},
				},
			},
		})
	})
	mux.HandleFunc("/library/metadata/101/posters", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPost:
			f.uploads = append(f.uploads, r.URL.Path)
		case http.MethodDelete:
			f.deletions = append(f.deletions, r.URL.Path)
		default:
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakePlexServer) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakePlexServer) setWatched(watched bool) {
	f.mu.Lock()
	f.watched = watched
	f.mu.Unlock()
}

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cardsDir := filepath.Join(base, "cards")
	cardPath := filepath.Join(cardsDir, "Show", "S01E01.jpg")
	if err := os.MkdirAll(filepath.Dir(cardPath), 0o755); err != nil {
		t.Fatalf("mkdir cards: %v", err)
	}
	if err := os.WriteFile(cardPath, []byte("card-bytes"), 0o644); err != nil {
		t.Fatalf("write card: %v", err)
	}

	plexSrv := newFakePlexServer(t)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, base, cardsDir, plexSrv.server.URL)

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		cardsDir:   cardsDir,
		plex:       plexSrv,
	}
}

func writeTestConfig(t *testing.T, path, base, cardsDir, plexURL string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[plex]
url = %q
token = "test-token"

[[libraries]]
name = "TV"
cards_dir = %q

[sync]
unwatched = "ignore"
workers = 2
`,
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
		plexURL,
		cardsDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
