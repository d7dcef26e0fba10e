package models

import "time"

// Room is a named collection point for voice messages, identified by a
// short base36 token shared via join/listen links.
type Room struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}
