package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MRamiBalles/ipd/internal/domain/action"
	"github.com/MRamiBalles/ipd/internal/events"
	"github.com/MRamiBalles/ipd/internal/infra/cache"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event events.MatchEvent) error {
	query := `
		INSERT INTO events (id, match_id, timestamp, event_type, turn, intended, played, score1, score2, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.MatchID, event.Timestamp, string(event.Type), event.Turn,
		encodePair(event.Intended), encodePair(event.Played), event.Scores[0], event.Scores[1], event.Details,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]events.MatchEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var result []events.MatchEvent
	for rows.Next() {
		var e events.MatchEvent
		var eventType, intended, played string
		err := rows.Scan(
			&e.ID, &e.MatchID, &e.Timestamp, &eventType, &e.Turn,
			&intended, &played, &e.Scores[0], &e.Scores[1], &e.Details,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = events.EventType(eventType)
		if e.Intended, err = decodePair(intended); err != nil {
			return nil, fmt.Errorf("failed to decode event %s: %w", e.ID, err)
		}
		if e.Played, err = decodePair(played); err != nil {
			return nil, fmt.Errorf("failed to decode event %s: %w", e.ID, err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

const eventColumns = `id, match_id, timestamp, event_type, turn, intended, played, score1, score2, details`

func (r *SQLiteEventRepository) GetByMatchID(ctx context.Context, matchID string) ([]events.MatchEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE match_id = ? ORDER BY rowid ASC`
	return r.getMany(ctx, query, matchID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, eventType events.EventType) ([]events.MatchEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_type = ? ORDER BY rowid ASC`
	return r.getMany(ctx, query, string(eventType))
}

func (r *SQLiteEventRepository) MatchIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT match_id FROM events ORDER BY match_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query match ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan match id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ---------------------------------------------------------
// SQLiteCacheRepository
// ---------------------------------------------------------

type SQLiteCacheRepository struct {
	db *sql.DB
}

func NewSQLiteCacheRepository(db *sql.DB) *SQLiteCacheRepository {
	return &SQLiteCacheRepository{db: db}
}

// Put upserts a result. A stored result is only replaced by a longer one.
func (r *SQLiteCacheRepository) Put(ctx context.Context, key cache.Key, result []action.Pair) error {
	query := `
		INSERT INTO cache_entries (player1, player2, game, known_length, plays1, plays2, turns, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player1, player2, game, known_length) DO UPDATE SET
			plays1=excluded.plays1,
			plays2=excluded.plays2,
			turns=excluded.turns,
			last_updated=excluded.last_updated
		WHERE excluded.turns > cache_entries.turns
	`
	p1, p2 := encodePairs(result)
	_, err := r.db.ExecContext(ctx, query, key.Player1, key.Player2, key.Game, key.Length, p1, p2, len(result), time.Now())
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Get returns the stored result for key, or nil if there is none.
func (r *SQLiteCacheRepository) Get(ctx context.Context, key cache.Key) ([]action.Pair, error) {
	query := `SELECT plays1, plays2 FROM cache_entries WHERE player1 = ? AND player2 = ? AND game = ? AND known_length = ?`
	var p1, p2 string
	err := r.db.QueryRowContext(ctx, query, key.Player1, key.Player2, key.Game, key.Length).Scan(&p1, &p2)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	result, err := decodePairs(p1, p2)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return result, nil
}

func (r *SQLiteCacheRepository) All(ctx context.Context) (map[cache.Key][]action.Pair, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT player1, player2, game, known_length, plays1, plays2 FROM cache_entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entries: %w", err)
	}
	defer rows.Close()

	all := make(map[cache.Key][]action.Pair)
	for rows.Next() {
		var k cache.Key
		var p1, p2 string
		if err := rows.Scan(&k.Player1, &k.Player2, &k.Game, &k.Length, &p1, &p2); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		result, err := decodePairs(p1, p2)
		if err != nil {
			return nil, fmt.Errorf("failed to decode cache entry %s: %w", k, err)
		}
		all[k] = result
	}
	return all, rows.Err()
}
