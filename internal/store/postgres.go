package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/salmonco/sorabang/internal/models"
)

// PostgreSQL error codes for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateRoom persists a new room with an empty message list.
func (s *PostgresStore) CreateRoom(ctx context.Context, id, title string) (*models.Room, error) {
	room := &models.Room{Messages: []models.Message{}}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO rooms (id, title)
		VALUES ($1, $2)
		RETURNING id, title, created_at
	`, id, title).Scan(
		&room.ID,
		&room.Title,
		&room.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicateRoom
		}
		return nil, err
	}
	return room, nil
}

// GetRoom retrieves a room by ID, without its messages.
// Returns (nil, nil) when no room exists for the ID.
func (s *PostgresStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	room := &models.Room{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, created_at
		FROM rooms WHERE id = $1
	`, id).Scan(
		&room.ID,
		&room.Title,
		&room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// AppendMessage durably appends a message to a room, assigning its ULID and
// timestamp. Returns ErrRoomNotFound if the room does not exist.
func (s *PostgresStore) AppendMessage(ctx context.Context, roomID string, in models.MessageInput) (*models.Message, error) {
	msg := &models.Message{}
	id := ulid.Make().String()

	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, room_id, nickname, audio_url, duration)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, room_id, nickname, audio_url, duration, created_at
	`, id, roomID, in.Nickname, in.AudioURL, in.Duration).Scan(
		&msg.ID,
		&msg.RoomID,
		&msg.Nickname,
		&msg.AudioURL,
		&msg.Duration,
		&msg.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return msg, nil
}

// ListMessages retrieves a room's messages in arrival order. ULIDs sort
// lexically by creation time, so ordering by id preserves append order.
func (s *PostgresStore) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, room_id, nickname, audio_url, duration, created_at
		FROM messages
		WHERE room_id = $1
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
func (s *PostgresStore) CountRooms(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count)
	return count, err
}

// CountMessages returns the total number of messages across all rooms.
func (s *PostgresStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// MostRecentActivity returns the timestamp of the latest message or room
// creation, or nil when nothing has happened yet.
func (s *PostgresStore) MostRecentActivity(ctx context.Context) (*time.Time, error) {
	var t *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT GREATEST(
			(SELECT MAX(created_at) FROM rooms),
			(SELECT MAX(created_at) FROM messages)
		)
	`).Scan(&t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// TopRooms returns the N rooms with the most messages.
func (s *PostgresStore) TopRooms(ctx context.Context, limit int) ([]models.Room, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.title, r.created_at
		FROM rooms r
		LEFT JOIN messages m ON m.room_id = r.id
		GROUP BY r.id, r.title, r.created_at
		ORDER BY COUNT(m.id) DESC, r.created_at DESC
		LIMIT $1
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
