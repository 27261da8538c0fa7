package engine

import (
	"context"
	"errors"
	"testing"

	"cardsync/internal/cards"
	"cardsync/internal/loaded"
	"cardsync/internal/services/plex"
)

func TestRequiredClass(t *testing.T) {
	cases := []struct {
		action  string
		watched bool
		want    cards.Class
	}{
		{"ignore", true, cards.ClassSpoiled},
		{"ignore", false, cards.ClassSpoiled},
		{"blur", true, cards.ClassSpoiled},
		{"blur", false, cards.ClassBlur},
		{"art", true, cards.ClassSpoiled},
		{"art", false, cards.ClassArt},
		{"blur_all", true, cards.ClassBlur},
		{"blur_all", false, cards.ClassBlur},
		{"art_all", true, cards.ClassArt},
		{"art_all", false, cards.ClassArt},
	}
	for _, tc := range cases {
		eng, _ := newTestEngine(t, tc.action, &fakeClient{}, &fakeRenderer{})
		if got := eng.requiredClass(tc.watched); got != tc.want {
			t.Errorf("action %s watched=%v: got %s, want %s", tc.action, tc.watched, got, tc.want)
		}
	}
}

func TestApplyWatchStatesUnwatchedTransition(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	client := &fakeClient{library: &plex.Library{Key: "1", Title: "TV"}}
	renderer := &fakeRenderer{size: 500}
	eng, store := newTestEngine(t, "blur", client, renderer)

	series := testSeries(t, t.TempDir(), "Show", e1)
	key := loaded.Key{Library: "TV", Series: "Show", Season: 1, Episode: 1}
	if err := store.Upsert(context.Background(), key, 101, cards.ClassSpoiled); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	remote := []plex.Episode{remoteEpisode("101", e1, false)}
	invalidated, err := eng.applyWatchStates(context.Background(), "TV", series, remote)
	if err != nil {
		t.Fatalf("applyWatchStates: %v", err)
	}
	if invalidated != 1 {
		t.Fatalf("invalidated = %d, want 1", invalidated)
	}
	if len(renderer.calls) != 1 || renderer.calls[0].Class != cards.ClassBlur {
		t.Fatalf("unexpected render calls: %+v", renderer.calls)
	}
	if len(client.deletes) != 1 || client.deletes[0] != "101" {
		t.Fatalf("expected poster deletion, got %v", client.deletes)
	}

	entry, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry == nil || !entry.Forced() {
		t.Fatalf("entry should be force-invalidated: %+v", entry)
	}
	if entry.Spoiler != cards.ClassSpoiled {
		t.Fatalf("invalidation must not rewrite the recorded class: %+v", entry)
	}
	if series.Episodes[e1].Class != cards.ClassBlur {
		t.Fatalf("episode class = %s, want blur", series.Episodes[e1].Class)
	}
}

func TestApplyWatchStatesWatchedRestoresSpoiled(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	client := &fakeClient{library: &plex.Library{Key: "1", Title: "TV"}}
	renderer := &fakeRenderer{size: 500}
	eng, store := newTestEngine(t, "blur", client, renderer)

	series := testSeries(t, t.TempDir(), "Show", e1)
	key := loaded.Key{Library: "TV", Series: "Show", Season: 1, Episode: 1}
	if err := store.Upsert(context.Background(), key, 101, cards.ClassBlur); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	remote := []plex.Episode{remoteEpisode("101", e1, true)}
	invalidated, err := eng.applyWatchStates(context.Background(), "TV", series, remote)
	if err != nil {
		t.Fatalf("applyWatchStates: %v", err)
	}
	if invalidated != 1 {
		t.Fatalf("invalidated = %d, want 1", invalidated)
	}
	if len(renderer.calls) != 1 || renderer.calls[0].Class != cards.ClassSpoiled {
		t.Fatalf("unexpected render calls: %+v", renderer.calls)
	}
}

func TestApplyWatchStatesNoRecordSpoiledIsNoop(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	client := &fakeClient{library: &plex.Library{Key: "1", Title: "TV"}}
	renderer := &fakeRenderer{}
	eng, _ := newTestEngine(t, "blur", client, renderer)

	series := testSeries(t, t.TempDir(), "Show", e1)
	remote := []plex.Episode{remoteEpisode("101", e1, true)}
	invalidated, err := eng.applyWatchStates(context.Background(), "TV", series, remote)
	if err != nil {
		t.Fatalf("applyWatchStates: %v", err)
	}
	if invalidated != 0 || len(renderer.calls) != 0 || len(client.deletes) != 0 {
		t.Fatalf("untracked spoiled card should be untouched: invalidated=%d renders=%v deletes=%v",
			invalidated, renderer.calls, client.deletes)
	}
}

func TestApplyWatchStatesNoRecordSpoilerFreeRendersOnly(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	client := &fakeClient{library: &plex.Library{Key: "1", Title: "TV"}}
	renderer := &fakeRenderer{size: 500}
	eng, store := newTestEngine(t, "blur_all", client, renderer)

	series := testSeries(t, t.TempDir(), "Show", e1)
	remote := []plex.Episode{remoteEpisode("101", e1, true)}
	invalidated, err := eng.applyWatchStates(context.Background(), "TV", series, remote)
	if err != nil {
		t.Fatalf("applyWatchStates: %v", err)
	}
	if invalidated != 0 {
		t.Fatalf("invalidated = %d, want 0 for untracked episode", invalidated)
	}
	if len(renderer.calls) != 1 || renderer.calls[0].Class != cards.ClassBlur {
		t.Fatalf("unexpected render calls: %+v", renderer.calls)
	}
	if len(client.deletes) != 0 {
		t.Fatalf("nothing to delete for untracked episode, got %v", client.deletes)
	}

	entries, err := store.FindSeries(context.Background(), "TV", "Show")
	if err != nil {
		t.Fatalf("FindSeries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("transition must not create store entries: %+v", entries)
	}
}

func TestApplyWatchStatesRenderFailureLeavesEntry(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	client := &fakeClient{library: &plex.Library{Key: "1", Title: "TV"}}
	renderer := &fakeRenderer{err: errors.New("imagemagick missing")}
	eng, store := newTestEngine(t, "blur", client, renderer)

	series := testSeries(t, t.TempDir(), "Show", e1)
	key := loaded.Key{Library: "TV", Series: "Show", Season: 1, Episode: 1}
	if err := store.Upsert(context.Background(), key, 101, cards.ClassSpoiled); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	remote := []plex.Episode{remoteEpisode("101", e1, false)}
	invalidated, err := eng.applyWatchStates(context.Background(), "TV", series, remote)
	if err != nil {
		t.Fatalf("render failure must not abort the series: %v", err)
	}
	if invalidated != 0 || len(client.deletes) != 0 {
		t.Fatalf("failed render must skip delete and invalidate: invalidated=%d deletes=%v",
			invalidated, client.deletes)
	}

	entry, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry == nil || entry.Forced() {
		t.Fatalf("entry should be untouched: %+v", entry)
	}
}

func TestApplyWatchStatesDeleteFailureStillInvalidates(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	client := &fakeClient{
		library:   &plex.Library{Key: "1", Title: "TV"},
		deleteErr: errors.New("poster delete refused"),
	}
	renderer := &fakeRenderer{size: 500}
	eng, store := newTestEngine(t, "blur", client, renderer)

	series := testSeries(t, t.TempDir(), "Show", e1)
	key := loaded.Key{Library: "TV", Series: "Show", Season: 1, Episode: 1}
	if err := store.Upsert(context.Background(), key, 101, cards.ClassSpoiled); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	remote := []plex.Episode{remoteEpisode("101", e1, false)}
	invalidated, err := eng.applyWatchStates(context.Background(), "TV", series, remote)
	if err != nil {
		t.Fatalf("applyWatchStates: %v", err)
	}
	if invalidated != 1 {
		t.Fatalf("invalidated = %d, want 1 despite delete failure", invalidated)
	}

	entry, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry == nil || !entry.Forced() {
		t.Fatalf("entry should be force-invalidated: %+v", entry)
	}
}

func TestApplyWatchStatesSkipsEpisodesWithoutCards(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	client := &fakeClient{library: &plex.Library{Key: "1", Title: "TV"}}
	renderer := &fakeRenderer{}
	eng, _ := newTestEngine(t, "blur_all", client, renderer)

	series := &cards.Series{
		Info:     cards.SeriesInfo{Name: "Show", FullName: "Show"},
		Episodes: map[cards.EpisodeKey]*cards.Episode{e1: {Key: e1}},
	}
	remote := []plex.Episode{remoteEpisode("101", e1, false)}
	invalidated, err := eng.applyWatchStates(context.Background(), "TV", series, remote)
	if err != nil {
		t.Fatalf("applyWatchStates: %v", err)
	}
	if invalidated != 0 || len(renderer.calls) != 0 {
		t.Fatalf("cardless episode must be ignored: invalidated=%d renders=%v", invalidated, renderer.calls)
	}
}
