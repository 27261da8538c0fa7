package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCLISyncAndLoadedCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"sync"}, env.configPath)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "Synced 1 cards (0 failed)")
	if env.plex.uploadCount() != 1 {
		t.Fatalf("expected 1 poster upload, got %d", env.plex.uploadCount())
	}

	out, _, err = runCLI(t, []string{"loaded", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("loaded list: %v", err)
	}
	requireContains(t, out, "Show")
	requireContains(t, out, "S01E01")
	requireContains(t, out, "spoiled")

	out, _, err = runCLI(t, []string{"loaded", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("loaded status: %v", err)
	}
	requireContains(t, out, "Cards")

	// Second pass uploads nothing.
	out, _, err = runCLI(t, []string{"sync"}, env.configPath)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	requireContains(t, out, "Synced 0 cards (0 failed)")
	if env.plex.uploadCount() != 1 {
		t.Fatalf("second pass must not re-upload, got %d uploads", env.plex.uploadCount())
	}
}

func TestCLILoadedInvalidateForcesReload(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"sync"}, env.configPath); err != nil {
		t.Fatalf("sync: %v", err)
	}

	out, _, err := runCLI(t, []string{"loaded", "invalidate", "TV", "Show", "1-1"}, env.configPath)
	if err != nil {
		t.Fatalf("loaded invalidate: %v", err)
	}
	requireContains(t, out, "Marked TV / Show S01E01 for reload")

	out, _, err = runCLI(t, []string{"loaded", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("loaded list: %v", err)
	}
	requireContains(t, out, "reload")

	if _, _, err := runCLI(t, []string{"sync"}, env.configPath); err != nil {
		t.Fatalf("sync after invalidate: %v", err)
	}
	if env.plex.uploadCount() != 2 {
		t.Fatalf("forced card should re-upload, got %d uploads", env.plex.uploadCount())
	}
}

func TestCLILoadedInvalidateSeries(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"sync"}, env.configPath); err != nil {
		t.Fatalf("sync: %v", err)
	}

	out, _, err := runCLI(t, []string{"loaded", "invalidate", "TV", "Show"}, env.configPath)
	if err != nil {
		t.Fatalf("loaded invalidate series: %v", err)
	}
	requireContains(t, out, "Marked 1 cards for reload in TV / Show")
}

func TestCLILoadedClear(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"sync"}, env.configPath); err != nil {
		t.Fatalf("sync: %v", err)
	}

	out, _, err := runCLI(t, []string{"loaded", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("loaded clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 loaded cards")

	out, _, err = runCLI(t, []string{"loaded", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("loaded status: %v", err)
	}
	requireContains(t, out, "Loaded store is empty")
}

func TestCLILoadedClearSeries(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"sync"}, env.configPath); err != nil {
		t.Fatalf("sync: %v", err)
	}

	out, _, err := runCLI(t, []string{"loaded", "clear", "TV", "Show"}, env.configPath)
	if err != nil {
		t.Fatalf("loaded clear series: %v", err)
	}
	requireContains(t, out, "Cleared 1 loaded cards for TV / Show")

	out, _, err = runCLI(t, []string{"loaded", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("loaded status: %v", err)
	}
	requireContains(t, out, "Loaded store is empty")
}

func TestCLISyncLibraryFilter(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"sync", "--library", "Movies"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no configured library") {
		t.Fatalf("expected unmatched filter error, got %v", err)
	}

	out, _, err := runCLI(t, []string{"sync", "--library", "tv"}, env.configPath)
	if err != nil {
		t.Fatalf("sync with filter: %v", err)
	}
	requireContains(t, out, "TV")
}

func TestCLILogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	logDir := filepath.Join(env.baseDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	logPath := filepath.Join(logDir, "cardsync.log")
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--lines", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "second")
	requireContains(t, out, "third")
	if strings.Contains(out, "first") {
		t.Fatalf("expected only the last 2 lines, got %q", out)
	}
}

func TestCLITestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "No ntfy topic configured")
}
