// Package blob stores submitted audio payloads and hands back URLs that the
// playback side can stream from. Two variants mirror the store duality:
// FSStore writes files served under /media/, InlineStore embeds the payload
// in a data: URL.
package blob

import (
	"context"
	"io"
)

// Store persists an audio payload and returns a URL referencing it.
type Store interface {
	Put(ctx context.Context, roomID, name, contentType string, r io.Reader) (string, error)
}
