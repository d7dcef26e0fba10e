package recorder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestCaptureFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voice.webm")
	payload := bytes.Repeat([]byte("opus"), 20000) // spans multiple read chunks
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatal(err)
	}

	rec := New()
	dev := &FileDevice{Path: path}
	if err := Capture(context.Background(), dev, rec); err != nil {
		t.Fatal(err)
	}

	clip, ok := rec.Clip()
	if !ok {
		t.Fatal("expected finalized clip after capture")
	}
	if clip.MIMEType != "audio/webm" {
		t.Fatalf("expected default mime audio/webm, got %s", clip.MIMEType)
	}
	if !bytes.Equal(clip.Data, payload) {
		t.Fatalf("clip data mismatch: %d bytes vs %d", len(clip.Data), len(payload))
	}
}

func TestCaptureMissingFile(t *testing.T) {
	rec := New()
	dev := &FileDevice{Path: filepath.Join(t.TempDir(), "nope.webm")}
	if err := Capture(context.Background(), dev, rec); err == nil {
		t.Fatal("expected error for missing file")
	}
	if rec.Status() != StatusIdle {
		t.Fatalf("failed open must leave recorder idle, got %s", rec.Status())
	}
}

// blockingDevice never delivers audio, so capture only ends via the context.
type blockingDevice struct {
	unblock chan struct{}
}

type blockingStream struct {
	unblock chan struct{}
}

func (s *blockingStream) Read(p []byte) (int, error) {
	<-s.unblock
	return 0, io.EOF
}

func (s *blockingStream) Close() error {
	select {
	case <-s.unblock:
	default:
		close(s.unblock)
	}
	return nil
}

func (d *blockingDevice) Open(ctx context.Context) (io.ReadCloser, string, error) {
	return &blockingStream{unblock: d.unblock}, "audio/webm", nil
}

// endlessDevice streams audio indefinitely, so capture only ends when the
// context does.
type endlessDevice struct{}

type endlessStream struct {
	done chan struct{}
}

func (s *endlessStream) Read(p []byte) (int, error) {
	select {
	case <-s.done:
		return 0, io.EOF
	case <-time.After(time.Millisecond):
	}
	n := 1024
	if len(p) < n {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		p[i] = 'x'
	}
	return n, nil
}

func (s *endlessStream) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}

func (d *endlessDevice) Open(ctx context.Context) (io.ReadCloser, string, error) {
	return &endlessStream{done: make(chan struct{})}, "audio/webm", nil
}

func TestCaptureCancelReleasesReader(t *testing.T) {
	before := runtime.NumGoroutine()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	rec := New()
	if err := Capture(ctx, &endlessDevice{}, rec); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The reader may hold a chunk nobody will receive; it must still exit.
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := runtime.NumGoroutine(); n > before {
		t.Fatalf("reader goroutine still running: %d goroutines, started with %d", n, before)
	}
}

func TestCaptureCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := New()
	dev := &blockingDevice{unblock: make(chan struct{})}
	err := Capture(ctx, dev, rec)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rec.Status() != StatusIdle {
		t.Fatalf("cancelled capture must reset to idle, got %s", rec.Status())
	}
}

func TestCaptureDeniedDevice(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not bind as root")
	}

	path := filepath.Join(t.TempDir(), "locked.webm")
	if err := os.WriteFile(path, []byte("x"), 0000); err != nil {
		t.Fatal(err)
	}

	rec := New()
	err := Capture(context.Background(), &FileDevice{Path: path}, rec)
	var pErr *PermissionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
}

func TestSessionManager(t *testing.T) {
	m := NewSessionManager(testLogger())
	defer m.Close()

	s, err := m.Begin("room1", "audio/webm")
	if err != nil {
		t.Fatal(err)
	}
	if s.Recorder.Status() != StatusRecording {
		t.Fatalf("session recorder should be recording, got %s", s.Recorder.Status())
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RoomID != "room1" {
		t.Fatalf("expected room1, got %s", got.RoomID)
	}

	m.End(s.ID)
	if _, err := m.Get(s.ID); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound after end, got %v", err)
	}

	if _, err := m.Get("bogus"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound for unknown id, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewSessionManager(testLogger())
	defer m.Close()

	expired := make(chan struct{}, 1)
	m.OnExpire(func() { expired <- struct{}{} })

	s, err := m.Begin("room1", "audio/webm")
	if err != nil {
		t.Fatal(err)
	}

	// Age the session past its TTL and run one sweep by hand.
	m.mu.Lock()
	m.sessions[s.ID].lastSeen = time.Now().Add(-sessionTTL - time.Minute)
	m.mu.Unlock()
	m.tickAll()

	select {
	case <-expired:
	default:
		t.Fatal("expected expiry callback")
	}
	if _, err := m.Get(s.ID); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound after expiry, got %v", err)
	}
}
