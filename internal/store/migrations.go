package store

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// RunMigrations applies the PostgreSQL schema. Idempotent; SQLite manages
// its own schema in NewSQLiteStore.
func RunMigrations(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		nickname TEXT NOT NULL,
		audio_url TEXT NOT NULL,
		duration INTEGER NOT NULL CHECK (duration <= 120),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, id);
	`

	_, err = conn.Exec(ctx, schema)
	return err
}
