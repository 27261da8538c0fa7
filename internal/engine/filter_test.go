package engine

import (
	"context"
	"testing"

	"cardsync/internal/cards"
	"cardsync/internal/loaded"
)

func TestFilterLoadedFirstSyncIncludesAll(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	e2 := cards.EpisodeKey{Season: 1, Episode: 2}
	eng, _ := newTestEngine(t, "ignore", &fakeClient{}, &fakeRenderer{})
	series := testSeries(t, t.TempDir(), "Show", e1, e2)

	workSet, err := eng.filterLoaded(context.Background(), "TV", series)
	if err != nil {
		t.Fatalf("filterLoaded: %v", err)
	}
	if len(workSet) != 2 {
		t.Fatalf("first sync should include every carded episode, got %d", len(workSet))
	}
}

func TestFilterLoadedSkipsUnchanged(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	eng, store := newTestEngine(t, "ignore", &fakeClient{}, &fakeRenderer{})
	series := testSeries(t, t.TempDir(), "Show", e1)

	key := loaded.Key{Library: "TV", Series: "Show", Season: 1, Episode: 1}
	if err := store.Upsert(context.Background(), key, 101, cards.ClassSpoiled); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	workSet, err := eng.filterLoaded(context.Background(), "TV", series)
	if err != nil {
		t.Fatalf("filterLoaded: %v", err)
	}
	if len(workSet) != 0 {
		t.Fatalf("matching size must be skipped, got %d", len(workSet))
	}
}

func TestFilterLoadedIncludesChangedSize(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	eng, store := newTestEngine(t, "ignore", &fakeClient{}, &fakeRenderer{})
	series := testSeries(t, t.TempDir(), "Show", e1)

	key := loaded.Key{Library: "TV", Series: "Show", Season: 1, Episode: 1}
	if err := store.Upsert(context.Background(), key, 9999, cards.ClassSpoiled); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	workSet, err := eng.filterLoaded(context.Background(), "TV", series)
	if err != nil {
		t.Fatalf("filterLoaded: %v", err)
	}
	if _, ok := workSet[e1]; !ok {
		t.Fatal("size mismatch must be included")
	}
}

func TestFilterLoadedIncludesForcedEntry(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	eng, store := newTestEngine(t, "ignore", &fakeClient{}, &fakeRenderer{})
	series := testSeries(t, t.TempDir(), "Show", e1)

	key := loaded.Key{Library: "TV", Series: "Show", Season: 1, Episode: 1}
	if err := store.Upsert(context.Background(), key, 101, cards.ClassSpoiled); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.ForceInvalidate(context.Background(), key); err != nil {
		t.Fatalf("ForceInvalidate: %v", err)
	}

	workSet, err := eng.filterLoaded(context.Background(), "TV", series)
	if err != nil {
		t.Fatalf("filterLoaded: %v", err)
	}
	if _, ok := workSet[e1]; !ok {
		t.Fatal("forced entry must be reloaded even though the file is unchanged")
	}
}

func TestFilterLoadedSkipsEpisodesWithoutCards(t *testing.T) {
	e1 := cards.EpisodeKey{Season: 1, Episode: 1}
	eng, _ := newTestEngine(t, "ignore", &fakeClient{}, &fakeRenderer{})

	series := &cards.Series{
		Info:     cards.SeriesInfo{Name: "Show", FullName: "Show"},
		Episodes: map[cards.EpisodeKey]*cards.Episode{e1: {Key: e1}},
	}
	workSet, err := eng.filterLoaded(context.Background(), "TV", series)
	if err != nil {
		t.Fatalf("filterLoaded: %v", err)
	}
	if len(workSet) != 0 {
		t.Fatalf("cardless episode must not be queued, got %d", len(workSet))
	}
}
