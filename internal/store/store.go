package store

import (
	"context"
	"errors"
	"time"

	"github.com/salmonco/sorabang/internal/models"
)

// ErrRoomNotFound is returned by AppendMessage when the target room does
// not exist. Reads report a missing room as (nil, nil) instead.
var ErrRoomNotFound = errors.New("store: room not found")

// ErrDuplicateRoom is returned by CreateRoom when the generated room token
// collides with an existing one. Callers retry with a fresh token.
var ErrDuplicateRoom = errors.New("store: duplicate room id")

// DataStore defines the interface for persistent storage of rooms and their
// voice messages. Both PostgresStore (hosted) and SQLiteStore (local device)
// implement this interface; everything above the store depends only on it.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// Room operations
	CreateRoom(ctx context.Context, id, title string) (*models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)

	// Message operations. Append assigns the message a ULID and timestamp;
	// ListMessages returns messages in arrival (append) order.
	AppendMessage(ctx context.Context, roomID string, in models.MessageInput) (*models.Message, error)
	ListMessages(ctx context.Context, roomID string) ([]models.Message, error)

	// Aggregates for the stats endpoint
	CountRooms(ctx context.Context) (int64, error)
	CountMessages(ctx context.Context) (int64, error)
	MostRecentActivity(ctx context.Context) (*time.Time, error)
	TopRooms(ctx context.Context, limit int) ([]models.Room, error)
}
