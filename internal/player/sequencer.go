package player

// DefaultVolume matches the listen view's initial volume setting.
const DefaultVolume = 70

// Sequencer tracks playback position over a static ordered track list.
// Tracks play strictly in list order; there is no shuffle, no re-sort, no
// wraparound at the boundaries. Not safe for concurrent use: all operations
// are expected to arrive from a single event loop.
type Sequencer struct {
	tracks      []Track
	out         Output
	index       int
	playing     bool
	autoAdvance bool
	volume      int
	muted       bool
}

// New creates a sequencer over tracks, positioned at the first track,
// paused, with auto-advance enabled.
func New(tracks []Track, out Output) *Sequencer {
	return &Sequencer{
		tracks:      tracks,
		out:         out,
		autoAdvance: true,
		volume:      DefaultVolume,
	}
}

// Play starts the track at the current position. No-op on an empty list.
func (s *Sequencer) Play() error {
	if len(s.tracks) == 0 || s.playing {
		return nil
	}
	return s.startCurrent()
}

// Pause halts playback, keeping the current position.
func (s *Sequencer) Pause() {
	if !s.playing {
		return
	}
	s.playing = false
	s.out.Pause()
}

// Next advances to the following track, clamped at the end. If playback was
// running the new track begins playing immediately.
func (s *Sequencer) Next() error {
	return s.SelectIndex(s.index + 1)
}

// Previous moves to the preceding track, clamped at the start. Same
// play-continuation rule as Next.
func (s *Sequencer) Previous() error {
	return s.SelectIndex(s.index - 1)
}

// SelectIndex jumps directly to index i, clamped to the valid range. If
// playback was running the selected track begins playing immediately.
func (s *Sequencer) SelectIndex(i int) error {
	if len(s.tracks) == 0 {
		return nil
	}
	i = clamp(i, 0, len(s.tracks)-1)
	if i == s.index {
		return nil
	}
	s.index = i
	if s.playing {
		return s.startCurrent()
	}
	return nil
}

// OnTrackEnd is fired when the current track's audio finishes. With
// auto-advance on and a following track available, playback moves on to it;
// otherwise the sequencer stops at the current position.
func (s *Sequencer) OnTrackEnd() error {
	if len(s.tracks) == 0 {
		return nil
	}
	if s.autoAdvance && s.index < len(s.tracks)-1 {
		s.index++
		return s.startCurrent()
	}
	s.playing = false
	s.out.Stop()
	return nil
}

// SetAutoAdvance toggles advancing to the next track on completion.
func (s *Sequencer) SetAutoAdvance(on bool) {
	s.autoAdvance = on
}

// SetVolume sets the 0-100 playback volume, clamped.
func (s *Sequencer) SetVolume(v int) {
	s.volume = clamp(v, 0, 100)
	s.out.SetVolume(s.volume, s.muted)
}

// ToggleMute flips the mute flag without touching the volume level.
func (s *Sequencer) ToggleMute() {
	s.muted = !s.muted
	s.out.SetVolume(s.volume, s.muted)
}

// Current returns the track at the playback position.
func (s *Sequencer) Current() (Track, bool) {
	if len(s.tracks) == 0 {
		return Track{}, false
	}
	return s.tracks[s.index], true
}

// CurrentIndex returns the 0-based playback position.
func (s *Sequencer) CurrentIndex() int {
	return s.index
}

// IsPlaying reports whether playback is running.
func (s *Sequencer) IsPlaying() bool {
	return s.playing
}

// AutoAdvance reports whether auto-advance is enabled.
func (s *Sequencer) AutoAdvance() bool {
	return s.autoAdvance
}

// Volume returns the current volume and mute flag.
func (s *Sequencer) Volume() (int, bool) {
	return s.volume, s.muted
}

// Len returns the number of tracks.
func (s *Sequencer) Len() int {
	return len(s.tracks)
}

// startCurrent begins the track at the current index, stopping the
// sequencer on a sink failure while keeping the track selected.
func (s *Sequencer) startCurrent() error {
	t := s.tracks[s.index]
	if err := s.out.Play(t); err != nil {
		s.playing = false
		return &PlaybackError{TrackID: t.ID, Err: err}
	}
	s.playing = true
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
