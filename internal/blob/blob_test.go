package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInlinePut(t *testing.T) {
	s := NewInlineStore()

	url, err := s.Put(context.Background(), "room1", "clip.webm", "audio/webm", bytes.NewReader([]byte("opus")))
	if err != nil {
		t.Fatal(err)
	}

	prefix := "data:audio/webm;base64,"
	if !strings.HasPrefix(url, prefix) {
		t.Fatalf("expected data URL, got %q", url)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, []byte("opus")) {
		t.Fatalf("payload round-trip failed: %q", decoded)
	}
}

func TestFSPut(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir, "https://sorabang.app/")
	if err != nil {
		t.Fatal(err)
	}

	url, err := s.Put(context.Background(), "abc123de", "1700000000000.webm", "audio/webm", bytes.NewReader([]byte("opus")))
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://sorabang.app/media/abc123de/1700000000000.webm" {
		t.Fatalf("unexpected URL %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "abc123de", "1700000000000.webm"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("opus")) {
		t.Fatalf("unexpected file contents %q", data)
	}
}

func TestFSPutStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir, "http://localhost:8080")
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Put(context.Background(), "../escape", "../../clip.webm", "audio/webm", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "escape", "clip.webm")); err != nil {
		t.Fatalf("expected sanitized path inside the media dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "clip.webm")); err == nil {
		t.Fatal("payload escaped the media dir")
	}
}
