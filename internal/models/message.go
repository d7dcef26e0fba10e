package models

import "time"

// MaxDurationSeconds is the hard ceiling on a voice message's length.
const MaxDurationSeconds = 120

// Message is a single submitted voice recording. Messages are append-only:
// never edited, never deleted, played back in arrival order.
type Message struct {
	ID        string    `json:"id"` // ULID, assigned by the store
	RoomID    string    `json:"room_id"`
	Nickname  string    `json:"nickname"`
	AudioURL  string    `json:"audio_url"`
	Duration  int       `json:"duration"` // seconds, <= MaxDurationSeconds
	CreatedAt time.Time `json:"created_at"`
}

// MessageInput carries the caller-supplied fields of a message; the store
// assigns ID and CreatedAt on append.
type MessageInput struct {
	Nickname string `json:"nickname"`
	AudioURL string `json:"audio_url"`
	Duration int    `json:"duration"`
}
