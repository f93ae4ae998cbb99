package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/events"
	"github.com/MRamiBalles/ipd/internal/infra/cache"
)

var (
	cc = action.Pair{action.C, action.C}
	cd = action.Pair{action.C, action.D}
	dc = action.Pair{action.D, action.C}
	dd = action.Pair{action.D, action.D}
)

func TestCacheRepositoryRoundTrip(t *testing.T) {
	db, err := InitSQLite(MemoryPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer db.Close()
	repo := NewSQLiteCacheRepository(db)
	ctx := context.Background()
	key := cache.Key{Player1: "Tit For Tat", Player2: "Alternator", Game: "default", Length: 4}

	if got, err := repo.Get(ctx, key); err != nil || got != nil {
		t.Fatalf("Expected no entry, got %v (%v)", got, err)
	}

	want := []action.Pair{cc, cd, dc, cd}
	if err := repo.Put(ctx, key, want); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := repo.Put(ctx, key, want[:2]); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := repo.Get(ctx, key)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Expected the longer result to be kept (-want +got):\n%s", diff)
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff(map[cache.Key][]action.Pair{key: want}, all); diff != "" {
		t.Errorf("Unexpected entries (-want +got):\n%s", diff)
	}
}

func TestCacheRepositorySeparatesLengths(t *testing.T) {
	db, err := InitSQLite(MemoryPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer db.Close()
	repo := NewSQLiteCacheRepository(db)
	ctx := context.Background()
	known := cache.Key{Player1: "Final Tit For Tat", Player2: "Cooperator", Game: "default", Length: 2}
	unknown := known
	unknown.Length = -1

	if err := repo.Put(ctx, known, []action.Pair{cc, dc}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := repo.Put(ctx, unknown, []action.Pair{cc, cc, cc}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := repo.Get(ctx, known)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff([]action.Pair{cc, dc}, got); diff != "" {
		t.Errorf("Expected the known-length entry to be kept apart (-want +got):\n%s", diff)
	}
	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(all))
	}
}

func TestCacheWarmsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "ipd.db")
	db, err := InitSQLite(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	key := cache.Key{Player1: "Cooperator", Player2: "Defector", Game: "default", Length: 2}
	c, _ := cache.New(16)
	c.WithStore(NewSQLiteCacheRepository(db))
	if _, err := c.Put(context.Background(), key, []action.Pair{cd, cd}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	db.Close()

	db, err = InitSQLite(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer db.Close()
	warm, _ := cache.New(16)
	if n, err := warm.WithStore(NewSQLiteCacheRepository(db)).Load(context.Background()); err != nil || n != 1 {
		t.Fatalf("Expected 1 entry, got %d (%v)", n, err)
	}
	if got, ok := warm.Get(key); !ok || len(got) != 2 {
		t.Errorf("Expected the cached result, got %v", got)
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	db, err := InitSQLite(MemoryPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer db.Close()
	repo := NewSQLiteEventRepository(db)
	log := events.NewEventLog(repo)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	recorded := []events.MatchEvent{
		{MatchID: "m1", Timestamp: now, Type: events.EventTypeMatchStart, Details: "Cooperator v Defector"},
		{MatchID: "m1", Timestamp: now, Type: events.EventTypeRound, Turn: 1, Intended: cd, Played: cd, Scores: [2]float64{0, 5}},
		{MatchID: "m1", Timestamp: now, Type: events.EventTypeNoiseFlip, Turn: 2, Intended: cd, Played: dd},
		{MatchID: "m1", Timestamp: now, Type: events.EventTypeRound, Turn: 2, Intended: cd, Played: dd, Scores: [2]float64{1, 1}},
		{MatchID: "m2", Timestamp: now, Type: events.EventTypeRound, Turn: 1, Intended: cc, Played: cc, Scores: [2]float64{3, 3}},
	}
	for _, e := range recorded {
		if err := log.Append(ctx, e); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	got, err := repo.GetByMatchID(ctx, "m1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(got))
	}
	if diff := cmp.Diff(log.GetByMatch("m1")[1], got[1]); diff != "" {
		t.Errorf("Unexpected round event (-want +got):\n%s", diff)
	}

	ids, err := repo.MatchIDs(ctx)
	if err != nil || !cmp.Equal([]string{"m1", "m2"}, ids) {
		t.Errorf("Expected [m1 m2], got %v (%v)", ids, err)
	}

	rounds, err := repo.GetByEventType(ctx, events.EventTypeRound)
	if err != nil || len(rounds) != 3 {
		t.Errorf("Expected 3 rounds, got %d (%v)", len(rounds), err)
	}

	m, err := NewReconstructor(repo).RebuildMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if diff := cmp.Diff([]action.Pair{cd, dd}, m.Result); diff != "" {
		t.Errorf("Unexpected result (-want +got):\n%s", diff)
	}
	if m.Totals != [2]float64{1, 6} || m.Flips != 1 || m.Replayed {
		t.Errorf("Expected totals [1 6], 1 flip and no replay, got %+v", m)
	}

	recap, err := NewReconstructor(repo).GenerateRecap(ctx, "m1")
	if err != nil || len(recap) != 2 {
		t.Fatalf("Expected 2 recap lines, got %v (%v)", recap, err)
	}
	if recap[0].Outcome != "BETRAYED" || recap[1].Outcome != "MUTUAL_DEFECTION" {
		t.Errorf("Unexpected outcomes %+v", recap)
	}
}

func TestRebuildUnknownMatch(t *testing.T) {
	db, err := InitSQLite(MemoryPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer db.Close()
	if _, err := NewReconstructor(NewSQLiteEventRepository(db)).RebuildMatch(context.Background(), "nope"); err == nil {
		t.Error("Expected an error for a match with no events")
	}
}
