package player

import (
	"errors"
	"fmt"
	"testing"
)

// fakeOutput records every call made to the playback sink.
type fakeOutput struct {
	calls   []string
	playErr error
}

func (o *fakeOutput) Play(t Track) error {
	if o.playErr != nil {
		return o.playErr
	}
	o.calls = append(o.calls, "play:"+t.ID)
	return nil
}

func (o *fakeOutput) Pause() { o.calls = append(o.calls, "pause") }
func (o *fakeOutput) Stop()  { o.calls = append(o.calls, "stop") }

func (o *fakeOutput) SetVolume(volume int, muted bool) {
	o.calls = append(o.calls, fmt.Sprintf("volume:%d:%t", volume, muted))
}

func threeTracks() []Track {
	return []Track{
		{ID: "a", Title: "one", Duration: 30},
		{ID: "b", Title: "two", Duration: 45},
		{ID: "c", Title: "three", Duration: 10},
	}
}

func TestInitialState(t *testing.T) {
	s := New(threeTracks(), &fakeOutput{})
	if s.CurrentIndex() != 0 {
		t.Fatalf("expected index 0, got %d", s.CurrentIndex())
	}
	if s.IsPlaying() {
		t.Fatal("new sequencer should be paused")
	}
	if !s.AutoAdvance() {
		t.Fatal("auto-advance should default on")
	}
	if v, muted := s.Volume(); v != DefaultVolume || muted {
		t.Fatalf("expected volume %d unmuted, got %d muted=%t", DefaultVolume, v, muted)
	}
}

func TestNextClampsAtEnd(t *testing.T) {
	s := New(threeTracks(), &fakeOutput{})

	for i := 0; i < 5; i++ {
		if err := s.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if s.CurrentIndex() != 2 {
		t.Fatalf("expected clamp at index 2, got %d", s.CurrentIndex())
	}

	for i := 0; i < 5; i++ {
		if err := s.Previous(); err != nil {
			t.Fatal(err)
		}
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("expected clamp at index 0, got %d", s.CurrentIndex())
	}
}

func TestPlayContinuation(t *testing.T) {
	out := &fakeOutput{}
	s := New(threeTracks(), out)

	// Paused navigation must not start audio.
	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if len(out.calls) != 0 {
		t.Fatalf("paused navigation started audio: %v", out.calls)
	}

	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if !s.IsPlaying() {
		t.Fatal("next during playback should keep playing")
	}

	want := []string{"play:b", "play:c"}
	if len(out.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, out.calls)
	}
	for i := range want {
		if out.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, out.calls)
		}
	}
}

func TestSelectIndexClamped(t *testing.T) {
	s := New(threeTracks(), &fakeOutput{})

	if err := s.SelectIndex(99); err != nil {
		t.Fatal(err)
	}
	if s.CurrentIndex() != 2 {
		t.Fatalf("expected 2, got %d", s.CurrentIndex())
	}

	if err := s.SelectIndex(-7); err != nil {
		t.Fatal(err)
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("expected 0, got %d", s.CurrentIndex())
	}
}

func TestAutoAdvance(t *testing.T) {
	out := &fakeOutput{}
	s := New(threeTracks(), out)
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}

	if err := s.OnTrackEnd(); err != nil {
		t.Fatal(err)
	}
	if s.CurrentIndex() != 1 || !s.IsPlaying() {
		t.Fatalf("expected playing at index 1, got index %d playing %t", s.CurrentIndex(), s.IsPlaying())
	}

	// Ending the last track stops at it, no wraparound.
	if err := s.OnTrackEnd(); err != nil {
		t.Fatal(err)
	}
	if err := s.OnTrackEnd(); err != nil {
		t.Fatal(err)
	}
	if s.IsPlaying() {
		t.Fatal("expected stop after the last track")
	}
	if s.CurrentIndex() != 2 {
		t.Fatalf("expected to remain at last track, got %d", s.CurrentIndex())
	}
}

func TestAutoAdvanceOff(t *testing.T) {
	out := &fakeOutput{}
	s := New(threeTracks(), out)
	s.SetAutoAdvance(false)
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}

	if err := s.OnTrackEnd(); err != nil {
		t.Fatal(err)
	}
	if s.IsPlaying() {
		t.Fatal("expected stop with auto-advance off")
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("expected position to hold at 0, got %d", s.CurrentIndex())
	}
}

func TestEmptyListNoOps(t *testing.T) {
	out := &fakeOutput{}
	s := New(nil, out)

	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	if err := s.Previous(); err != nil {
		t.Fatal(err)
	}
	if err := s.OnTrackEnd(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Current(); ok {
		t.Fatal("empty sequencer has no current track")
	}
	if len(out.calls) != 0 {
		t.Fatalf("empty sequencer touched the sink: %v", out.calls)
	}
}

func TestPauseKeepsPosition(t *testing.T) {
	out := &fakeOutput{}
	s := New(threeTracks(), out)
	if err := s.Play(); err != nil {
		t.Fatal(err)
	}
	if err := s.Next(); err != nil {
		t.Fatal(err)
	}
	s.Pause()

	if s.IsPlaying() {
		t.Fatal("expected paused")
	}
	if s.CurrentIndex() != 1 {
		t.Fatalf("pause moved the position to %d", s.CurrentIndex())
	}
}

func TestVolumeClampAndMute(t *testing.T) {
	out := &fakeOutput{}
	s := New(threeTracks(), out)

	s.SetVolume(150)
	if v, _ := s.Volume(); v != 100 {
		t.Fatalf("expected clamp to 100, got %d", v)
	}
	s.SetVolume(-5)
	if v, _ := s.Volume(); v != 0 {
		t.Fatalf("expected clamp to 0, got %d", v)
	}

	s.SetVolume(40)
	s.ToggleMute()
	if v, muted := s.Volume(); v != 40 || !muted {
		t.Fatalf("mute must keep the level, got %d muted=%t", v, muted)
	}
	s.ToggleMute()
	if _, muted := s.Volume(); muted {
		t.Fatal("expected unmuted after second toggle")
	}
}

func TestSinkFailure(t *testing.T) {
	sinkErr := errors.New("device gone")
	out := &fakeOutput{playErr: sinkErr}
	s := New(threeTracks(), out)

	err := s.Play()
	var pbErr *PlaybackError
	if !errors.As(err, &pbErr) {
		t.Fatalf("expected PlaybackError, got %v", err)
	}
	if pbErr.TrackID != "a" {
		t.Fatalf("expected failing track a, got %s", pbErr.TrackID)
	}
	if !errors.Is(err, sinkErr) {
		t.Fatal("expected wrapped sink error")
	}
	if s.IsPlaying() {
		t.Fatal("sink failure must stop playback")
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("failed track stays selected, got %d", s.CurrentIndex())
	}
}
