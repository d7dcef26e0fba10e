package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/salmonco/sorabang/internal/models"
)

// SQLiteStore is the local-device store variant: a single on-disk database
// file, suitable for single-host deployments and development.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/sorabang.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/sorabang.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		room_id TEXT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
		nickname TEXT NOT NULL,
		audio_url TEXT NOT NULL,
		duration INTEGER NOT NULL CHECK (duration <= 120),
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateRoom persists a new room with an empty message list.
func (s *SQLiteStore) CreateRoom(ctx context.Context, id, title string) (*models.Room, error) {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, title, created_at)
		VALUES (?, ?, ?)
	`, id, title, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {
			return nil, ErrDuplicateRoom
		}
		return nil, err
	}

	return &models.Room{
		ID:        id,
		Title:     title,
		CreatedAt: now,
		Messages:  []models.Message{},
	}, nil
}

// GetRoom retrieves a room by ID, without its messages.
// Returns (nil, nil) when no room exists for the ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	room := &models.Room{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at
		FROM rooms WHERE id = ?
	`, id).Scan(
		&room.ID,
		&room.Title,
		&room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// AppendMessage durably appends a message to a room, assigning its ULID and
// timestamp. Returns ErrRoomNotFound if the room does not exist.
func (s *SQLiteStore) AppendMessage(ctx context.Context, roomID string, in models.MessageInput) (*models.Message, error) {
	id := ulid.Make().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, room_id, nickname, audio_url, duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, roomID, in.Nickname, in.AudioURL, in.Duration, now)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return &models.Message{
		ID:        id,
		RoomID:    roomID,
		Nickname:  in.Nickname,
		AudioURL:  in.AudioURL,
		Duration:  in.Duration,
		CreatedAt: now,
	}, nil
}

// ListMessages retrieves a room's messages in arrival order. ULIDs sort
// lexically by creation time, so ordering by id preserves append order.
func (s *SQLiteStore) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, nickname, audio_url, duration, created_at
		FROM messages
		WHERE room_id = ?
		ORDER BY id
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.RoomID,
			&msg.Nickname,
			&msg.AudioURL,
			&msg.Duration,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// CountRooms returns the total number of rooms.
func (s *SQLiteStore) CountRooms(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count)
	return count, err
}

// CountMessages returns the total number of messages across all rooms.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// MostRecentActivity returns the timestamp of the latest message or room
// creation, or nil when nothing has happened yet. The driver only maps
// DATETIME columns to time.Time when selected directly, hence two queries
// instead of a MAX over a union.
func (s *SQLiteStore) MostRecentActivity(ctx context.Context) (*time.Time, error) {
	latest := func(query string) (*time.Time, error) {
		var t time.Time
		err := s.db.QueryRowContext(ctx, query).Scan(&t)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	roomTS, err := latest(`SELECT created_at FROM rooms ORDER BY created_at DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	msgTS, err := latest(`SELECT created_at FROM messages ORDER BY created_at DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}

	if roomTS == nil {
		return msgTS, nil
	}
	if msgTS == nil || roomTS.After(*msgTS) {
		return roomTS, nil
	}
	return msgTS, nil
}

// TopRooms returns the N rooms with the most messages.
func (s *SQLiteStore) TopRooms(ctx context.Context, limit int) ([]models.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.title, r.created_at
		FROM rooms r
		LEFT JOIN messages m ON m.room_id = r.id
		GROUP BY r.id, r.title, r.created_at
		ORDER BY COUNT(m.id) DESC, r.created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Title, &room.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}
