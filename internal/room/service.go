// Package room implements the room and message lifecycle: creation with
// token generation, lookup, and one-shot voice message submission. It is the
// only layer that talks to both the data store and the blob store.
package room

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/salmonco/sorabang/internal/blob"
	"github.com/salmonco/sorabang/internal/models"
	"github.com/salmonco/sorabang/internal/store"
)

// MaxNicknameLength is the display-name limit in characters.
const MaxNicknameLength = 20

// createRetries bounds token regeneration when an insert hits a duplicate.
const createRetries = 3

// Service owns room/message validation and persistence.
type Service struct {
	store  store.DataStore
	blobs  blob.Store
	logger zerolog.Logger
}

// NewService creates a room service.
func NewService(st store.DataStore, blobs blob.Store, logger zerolog.Logger) *Service {
	return &Service{store: st, blobs: blobs, logger: logger}
}

// CreateRoom validates the title, generates a unique token and persists a
// room with an empty message list.
func (s *Service) CreateRoom(ctx context.Context, title string) (*models.Room, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	var lastErr error
	for i := 0; i < createRetries; i++ {
		token, err := NewToken()
		if err != nil {
			return nil, &StorageError{Op: "generate token", Err: err}
		}

		room, err := s.store.CreateRoom(ctx, token, title)
		if err == nil {
			s.logger.Info().Str("room_id", room.ID).Msg("room created")
			return room, nil
		}
		if errors.Is(err, store.ErrDuplicateRoom) {
			s.logger.Warn().Str("room_id", token).Msg("room token collision, retrying")
			lastErr = err
			continue
		}
		return nil, &StorageError{Op: "create room", Err: err}
	}
	return nil, &StorageError{Op: "create room", Err: lastErr}
}

// GetRoom loads a room and its messages in arrival order.
// Returns NotFoundError when the id does not resolve.
func (s *Service) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "get room", Err: err}
	}
	if room == nil {
		return nil, &NotFoundError{ID: id}
	}

	messages, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "list messages", Err: err}
	}
	room.Messages = messages
	return room, nil
}

// Submit validates the nickname and clip, uploads the audio and appends a
// message to the room. Every call mints a new message; resubmitting the same
// clip deliberately creates a duplicate.
func (s *Service) Submit(ctx context.Context, roomID, nickname string, clip models.Clip) (*models.Message, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, &ValidationError{Field: "nickname", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(nickname) > MaxNicknameLength {
		return nil, &ValidationError{Field: "nickname", Reason: fmt.Sprintf("must be at most %d characters", MaxNicknameLength)}
	}
	if clip.Empty() {
		return nil, &ValidationError{Field: "audio", Reason: "clip is required"}
	}
	if clip.Duration < 0 || clip.Duration > models.MaxDurationSeconds {
		return nil, &ValidationError{Field: "duration", Reason: fmt.Sprintf("must be between 0 and %d seconds", models.MaxDurationSeconds)}
	}

	// The room may have vanished between page load and submit; check before
	// spending an upload on it.
	existing, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, &StorageError{Op: "get room", Err: err}
	}
	if existing == nil {
		return nil, &NotFoundError{ID: roomID}
	}

	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), clipExtension(clip.MIMEType))
	audioURL, err := s.blobs.Put(ctx, roomID, name, clip.MIMEType, bytes.NewReader(clip.Data))
	if err != nil {
		return nil, &StorageError{Op: "upload audio", Err: err}
	}

	msg, err := s.store.AppendMessage(ctx, roomID, models.MessageInput{
		Nickname: nickname,
		AudioURL: audioURL,
		Duration: clip.Duration,
	})
	if err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return nil, &NotFoundError{ID: roomID}
		}
		return nil, &StorageError{Op: "append message", Err: err}
	}

	s.logger.Info().
		Str("room_id", roomID).
		Str("message_id", msg.ID).
		Int("duration", msg.Duration).
		Msg("message submitted")

	return msg, nil
}

// clipExtension maps a capture MIME type to a file extension.
func clipExtension(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "audio/webm"):
		return ".webm"
	case strings.HasPrefix(mimeType, "audio/mp4"):
		return ".m4a"
	case strings.HasPrefix(mimeType, "audio/wav"):
		return ".wav"
	default:
		return ".bin"
	}
}
