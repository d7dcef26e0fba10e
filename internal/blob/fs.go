package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStore writes audio files under a media directory, one subdirectory per
// room. The router serves the directory at baseURL + "/media/".
type FSStore struct {
	dir     string
	baseURL string
}

// NewFSStore creates a filesystem blob store rooted at dir.
func NewFSStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FSStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the media directory for file serving.
func (s *FSStore) Dir() string {
	return s.dir
}

// Put writes the payload to <dir>/<roomID>/<name> and returns its public URL.
func (s *FSStore) Put(ctx context.Context, roomID, name, contentType string, r io.Reader) (string, error) {
	// Room ids and names are server-generated, but keep path traversal out
	// of reach anyway.
	roomID = filepath.Base(roomID)
	name = filepath.Base(name)

	roomDir := filepath.Join(s.dir, roomID)
	if err := os.MkdirAll(roomDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(roomDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}

	return fmt.Sprintf("%s/media/%s/%s", s.baseURL, roomID, name), nil
}
