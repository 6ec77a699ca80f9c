// README: User store backed by PostgreSQL (upsert-only, no business invariants).
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"placepilot/internal/places"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables on startup. The schema is small enough
// that migrations would be overkill.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            chat_id        BIGINT PRIMARY KEY,
            last_latitude  DOUBLE PRECISION,
            last_longitude DOUBLE PRECISION,
            last_seen_at   TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE TABLE IF NOT EXISTS contributions (
            id         BIGSERIAL PRIMARY KEY,
            chat_id    BIGINT NOT NULL REFERENCES users(chat_id),
            place_name TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveLocation upserts the user record with their latest shared location.
func (s *Store) SaveLocation(ctx context.Context, chatID int64, loc places.Location) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO users (chat_id, last_latitude, last_longitude, last_seen_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (chat_id) DO UPDATE SET
            last_latitude  = EXCLUDED.last_latitude,
            last_longitude = EXCLUDED.last_longitude,
            last_seen_at   = now()`,
		chatID, loc.Latitude, loc.Longitude,
	)
	if err != nil {
		return fmt.Errorf("save location for %d: %w", chatID, err)
	}
	return nil
}

// RecordContribution logs one submitted place suggestion for the user.
func (s *Store) RecordContribution(ctx context.Context, chatID int64, placeName string) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO users (chat_id) VALUES ($1)
        ON CONFLICT (chat_id) DO NOTHING`,
		chatID,
	)
	if err != nil {
		return fmt.Errorf("record contribution for %d: %w", chatID, err)
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO contributions (chat_id, place_name) VALUES ($1, $2)`,
		chatID, placeName,
	)
	if err != nil {
		return fmt.Errorf("record contribution for %d: %w", chatID, err)
	}
	return nil
}

// Get returns the user record, or nil when the chat has never been seen.
func (s *Store) Get(ctx context.Context, chatID int64) (*User, error) {
	row := s.db.QueryRow(ctx, `
        SELECT u.chat_id, u.last_latitude, u.last_longitude, u.last_seen_at,
               (SELECT count(*) FROM contributions c WHERE c.chat_id = u.chat_id)
        FROM users u
        WHERE u.chat_id = $1`, chatID,
	)

	var u User
	err := row.Scan(&u.ChatID, &u.LastLatitude, &u.LastLongitude, &u.LastSeenAt, &u.Contributions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", chatID, err)
	}
	return &u, nil
}
