package blob

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

// InlineStore encodes the payload into a base64 data: URL instead of
// writing it anywhere. The message row then carries the audio itself, the
// way the on-device variant keeps everything in one record.
type InlineStore struct{}

// NewInlineStore creates an inline blob store.
func NewInlineStore() *InlineStore {
	return &InlineStore{}
}

// Put reads the payload and returns it as a data: URL.
func (s *InlineStore) Put(ctx context.Context, roomID, name, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}
