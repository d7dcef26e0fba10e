// Package player implements deterministic single-track-at-a-time playback
// over a static ordered list of voice messages: position tracking, transport
// controls, and auto-advance on track end.
package player

import "fmt"

// Track is one playable entry of a room's broadcast, in arrival order.
type Track struct {
	ID       string
	Title    string // the sender's nickname
	URL      string
	Duration int // seconds
}

// Output is the audio sink the sequencer drives. The CLI uses a writer
// sink; a UI would wrap its media element here.
type Output interface {
	// Play begins playing a track from its start.
	Play(t Track) error
	// Pause halts the current track without losing position.
	Pause()
	// Stop halts playback entirely.
	Stop()
	// SetVolume applies the 0-100 volume and mute flag.
	SetVolume(volume int, muted bool)
}

// PlaybackError reports a track that could not be decoded or played. The
// sequencer stops but keeps the track selected for manual retry.
type PlaybackError struct {
	TrackID string
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback of track %s failed: %v", e.TrackID, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
