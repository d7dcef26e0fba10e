package recorder

import (
	"bytes"
	"testing"

	"github.com/salmonco/sorabang/internal/models"
)

func TestLifecycle(t *testing.T) {
	r := New()
	if r.Status() != StatusIdle {
		t.Fatalf("expected IDLE, got %s", r.Status())
	}

	if err := r.Start("audio/webm"); err != nil {
		t.Fatal(err)
	}
	if r.Status() != StatusRecording {
		t.Fatalf("expected RECORDING, got %s", r.Status())
	}

	if err := r.AppendChunk([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	r.Tick()
	r.Tick()

	clip, err := r.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if r.Status() != StatusStopped {
		t.Fatalf("expected STOPPED, got %s", r.Status())
	}
	if clip.Duration != 2 {
		t.Fatalf("expected duration 2, got %d", clip.Duration)
	}
	if clip.MIMEType != "audio/webm" {
		t.Fatalf("expected audio/webm, got %s", clip.MIMEType)
	}
	if !bytes.Equal(clip.Data, []byte("abc")) {
		t.Fatalf("unexpected clip data %q", clip.Data)
	}

	r.Reset()
	if r.Status() != StatusIdle {
		t.Fatalf("expected IDLE after reset, got %s", r.Status())
	}
	if _, ok := r.Clip(); ok {
		t.Fatal("reset recorder should have no clip")
	}
}

func TestInvalidTransitions(t *testing.T) {
	r := New()

	if _, err := r.Stop(); err != ErrInvalidState {
		t.Fatalf("stop while idle: expected ErrInvalidState, got %v", err)
	}
	if err := r.AppendChunk([]byte("x")); err != ErrInvalidState {
		t.Fatalf("append while idle: expected ErrInvalidState, got %v", err)
	}

	if err := r.Start("audio/webm"); err != nil {
		t.Fatal(err)
	}
	if err := r.Start("audio/webm"); err != ErrInvalidState {
		t.Fatalf("double start: expected ErrInvalidState, got %v", err)
	}

	if _, err := r.Stop(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Stop(); err != ErrInvalidState {
		t.Fatalf("double stop: expected ErrInvalidState, got %v", err)
	}
	if err := r.AppendChunk([]byte("x")); err != ErrInvalidState {
		t.Fatalf("append after stop: expected ErrInvalidState, got %v", err)
	}
}

func TestHardStopAtCap(t *testing.T) {
	r := New()
	if err := r.Start("audio/webm"); err != nil {
		t.Fatal(err)
	}

	// One tick past the cap; the counter must clamp, not overshoot.
	for i := 0; i < models.MaxDurationSeconds+1; i++ {
		r.Tick()
	}

	if r.Status() != StatusStopped {
		t.Fatalf("expected STOPPED at cap, got %s", r.Status())
	}
	clip, ok := r.Clip()
	if !ok {
		t.Fatal("expected finalized clip at cap")
	}
	if clip.Duration != models.MaxDurationSeconds {
		t.Fatalf("expected duration %d, got %d", models.MaxDurationSeconds, clip.Duration)
	}
}

func TestTickWhileIdle(t *testing.T) {
	r := New()
	r.Tick()
	if r.Elapsed() != 0 {
		t.Fatalf("idle tick should not advance, got %d", r.Elapsed())
	}
}

func TestStartResetsCounter(t *testing.T) {
	r := New()
	if err := r.Start("audio/webm"); err != nil {
		t.Fatal(err)
	}
	r.Tick()
	r.AppendChunk([]byte("first"))
	if _, err := r.Stop(); err != nil {
		t.Fatal(err)
	}
	r.Reset()

	if err := r.Start("audio/mp4"); err != nil {
		t.Fatal(err)
	}
	if r.Elapsed() != 0 {
		t.Fatalf("fresh recording should start at 0, got %d", r.Elapsed())
	}
	clip, err := r.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if len(clip.Data) != 0 {
		t.Fatalf("fresh recording should not carry old audio, got %q", clip.Data)
	}
	if clip.MIMEType != "audio/mp4" {
		t.Fatalf("expected audio/mp4, got %s", clip.MIMEType)
	}
}

func TestClipIsACopy(t *testing.T) {
	r := New()
	if err := r.Start("audio/webm"); err != nil {
		t.Fatal(err)
	}
	r.AppendChunk([]byte("abc"))
	clip, err := r.Stop()
	if err != nil {
		t.Fatal(err)
	}

	clip.Data[0] = 'z'
	again, ok := r.Clip()
	if !ok {
		t.Fatal("expected clip")
	}
	if !bytes.Equal(again.Data, []byte("abc")) {
		t.Fatal("mutating a returned clip must not affect the recorder")
	}
}
