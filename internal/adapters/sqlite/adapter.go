// Package sqlite provides a SQLite-backed implementation of the taste store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/avelar-labs/mixfeed/internal/core/domain"
	"github.com/avelar-labs/mixfeed/internal/core/ports"
)

// Adapter implements the taste store ports for SQLite.
type Adapter struct {
	db *sql.DB
}

var _ ports.TasteStore = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return adapter, nil
}

// Close ensures the DB connection is closed gracefully.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// DetailedPreferences lists a user's preference rows, most recent first.
func (a *Adapter) DetailedPreferences(ctx context.Context, userID int64, limit int) ([]domain.Preference, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT t.catalog_id, t.title, t.artist, IFNULL(t.genre, ''), IFNULL(t.duration_ms, 0),
			p.kind, p.created_at
		FROM preferences p
		JOIN tracks t ON t.catalog_id = p.catalog_id
		WHERE p.user_id = ?
		ORDER BY p.created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	defer rows.Close()

	var prefs []domain.Preference
	for rows.Next() {
		var (
			pref      domain.Preference
			kind      string
			createdAt int64
		)
		if err := rows.Scan(
			&pref.Track.CatalogID,
			&pref.Track.Title,
			&pref.Track.Artist,
			&pref.Track.Genre,
			&pref.Track.DurationMs,
			&kind,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		pref.Kind = domain.PreferenceKind(kind)
		pref.CreatedAt = fromUnixMs(createdAt)
		prefs = append(prefs, pref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate preferences: %w", err)
	}
	return prefs, nil
}

// ListeningHistory lists a user's play events, most recent first.
func (a *Adapter) ListeningHistory(ctx context.Context, userID int64, limit int) ([]domain.PlayEvent, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT t.catalog_id, t.title, t.artist, IFNULL(t.genre, ''), IFNULL(t.duration_ms, 0),
			h.played_at, IFNULL(h.play_duration_ms, 0)
		FROM listening_history h
		JOIN tracks t ON t.catalog_id = h.catalog_id
		WHERE h.user_id = ?
		ORDER BY h.played_at DESC, h.id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var events []domain.PlayEvent
	for rows.Next() {
		var (
			ev       domain.PlayEvent
			playedAt int64
		)
		if err := rows.Scan(
			&ev.Track.CatalogID,
			&ev.Track.Title,
			&ev.Track.Artist,
			&ev.Track.Genre,
			&ev.Track.DurationMs,
			&playedAt,
			&ev.PlayDurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan play event: %w", err)
		}
		ev.PlayedAt = fromUnixMs(playedAt)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return events, nil
}

// DislikedCatalogIDs lists catalog ids the user disliked, most recent first.
func (a *Adapter) DislikedCatalogIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT catalog_id FROM preferences
		WHERE user_id = ? AND kind = 'dislike'
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load dislikes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan disliked id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dislikes: %w", err)
	}
	return ids, nil
}

// SavePreference upserts the track row and the (user, track) preference.
// Liking a previously disliked track flips the kind, never duplicates.
func (a *Adapter) SavePreference(ctx context.Context, userID int64, pref domain.Preference) error {
	if !pref.Track.Valid() {
		return fmt.Errorf("sqlite adapter: invalid track id %d", pref.Track.CatalogID)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertTrack(ctx, tx, pref.Track); err != nil {
		return err
	}

	createdAt := pref.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO preferences (user_id, catalog_id, kind, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, catalog_id) DO UPDATE SET
			kind=excluded.kind,
			created_at=excluded.created_at
	`, userID, pref.Track.CatalogID, string(pref.Kind), toUnixMs(createdAt)); err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// RecordPlay appends a listening history row, upserting the track first.
func (a *Adapter) RecordPlay(ctx context.Context, userID int64, event domain.PlayEvent) error {
	if !event.Track.Valid() {
		return fmt.Errorf("sqlite adapter: invalid track id %d", event.Track.CatalogID)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertTrack(ctx, tx, event.Track); err != nil {
		return err
	}

	playedAt := event.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO listening_history (user_id, catalog_id, played_at, play_duration_ms)
		VALUES (?, ?, ?, ?)
	`, userID, event.Track.CatalogID, toUnixMs(playedAt), event.PlayDurationMs); err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// RecentlyActiveUsers lists users with preference or play activity since the
// given instant, most recently active first.
func (a *Adapter) RecentlyActiveUsers(ctx context.Context, since time.Time, limit int) ([]int64, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT user_id FROM (
			SELECT user_id, created_at AS at FROM preferences
			UNION ALL
			SELECT user_id, played_at AS at FROM listening_history
		)
		WHERE at >= ?
		GROUP BY user_id
		ORDER BY MAX(at) DESC
		LIMIT ?
	`, toUnixMs(since), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load active users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active users: %w", err)
	}
	return ids, nil
}

func upsertTrack(ctx context.Context, tx *sql.Tx, t domain.Track) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tracks (catalog_id, title, artist, genre, duration_ms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(catalog_id) DO UPDATE SET
			title=excluded.title,
			artist=excluded.artist,
			genre=excluded.genre,
			duration_ms=excluded.duration_ms
	`, t.CatalogID, t.Title, t.Artist, t.Genre, t.DurationMs); err != nil {
		return fmt.Errorf("failed to save track %d: %w", t.CatalogID, err)
	}
	return nil
}

func (a *Adapter) migrate() error {
	// Timestamps are stored as unix milliseconds so decay math reads them
	// back without parsing.
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		catalog_id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		genre TEXT,
		duration_ms INTEGER
	);

	CREATE TABLE IF NOT EXISTS preferences (
		user_id INTEGER NOT NULL,
		catalog_id INTEGER NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('like', 'dislike')),
		created_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, catalog_id),
		FOREIGN KEY(catalog_id) REFERENCES tracks(catalog_id)
	);

	CREATE TABLE IF NOT EXISTS listening_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		catalog_id INTEGER NOT NULL,
		played_at INTEGER NOT NULL,
		play_duration_ms INTEGER,
		FOREIGN KEY(catalog_id) REFERENCES tracks(catalog_id)
	);

	CREATE INDEX IF NOT EXISTS idx_preferences_user_created
		ON preferences(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_history_user_played
		ON listening_history(user_id, played_at DESC);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}
	return nil
}

func toUnixMs(t time.Time) int64 {
	return t.UnixMilli()
}

func fromUnixMs(ms int64) time.Time {
	return time.UnixMilli(ms)
}
