// Package recorder models the capture lifecycle of a voice clip: a small
// state machine that accumulates encoded audio chunks, counts elapsed
// seconds, and enforces the two-minute ceiling.
package recorder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/salmonco/sorabang/internal/models"
)

// Status is the recorder's lifecycle state.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusRecording Status = "RECORDING"
	StatusStopped   Status = "STOPPED"
)

// ErrInvalidState is returned when an operation is not legal in the
// recorder's current state, e.g. stopping an idle recorder.
var ErrInvalidState = errors.New("recorder: invalid state")

// PermissionError reports that the capture device denied access. The
// recording flow aborts back to idle.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("recorder: device access denied: %v", e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// Recorder captures one clip at a time: Idle -> Recording -> Stopped, back
// to Idle via Reset. There is no pause/resume. The duration counter ticks
// once per second and recording hard-stops when it reaches the cap.
type Recorder struct {
	mu       sync.Mutex
	status   Status
	mimeType string
	elapsed  int
	max      int
	buf      []byte
}

// New creates an idle recorder with the standard two-minute cap.
func New() *Recorder {
	return &Recorder{status: StatusIdle, max: models.MaxDurationSeconds}
}

// Start begins capturing. The duration counter resets to zero.
func (r *Recorder) Start(mimeType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusIdle {
		return ErrInvalidState
	}
	r.status = StatusRecording
	r.mimeType = mimeType
	r.elapsed = 0
	r.buf = nil
	return nil
}

// AppendChunk buffers a piece of encoded audio from the capture side.
func (r *Recorder) AppendChunk(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusRecording {
		return ErrInvalidState
	}
	r.buf = append(r.buf, p...)
	return nil
}

// Tick advances the duration counter by one second. Once the counter
// reaches the cap the recording finalizes; further ticks are no-ops.
func (r *Recorder) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusRecording {
		return
	}
	r.elapsed++
	if r.elapsed >= r.max {
		r.elapsed = r.max
		r.status = StatusStopped
	}
}

// Stop ends the capture and finalizes the clip.
func (r *Recorder) Stop() (models.Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusRecording {
		return models.Clip{}, ErrInvalidState
	}
	r.status = StatusStopped
	return r.clipLocked(), nil
}

// Clip returns the finalized clip, if any.
func (r *Recorder) Clip() (models.Clip, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusStopped {
		return models.Clip{}, false
	}
	return r.clipLocked(), true
}

// Reset discards the current clip and returns to idle.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status = StatusIdle
	r.mimeType = ""
	r.elapsed = 0
	r.buf = nil
}

// Status returns the current lifecycle state.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Elapsed returns the recorded duration in seconds so far.
func (r *Recorder) Elapsed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed
}

func (r *Recorder) clipLocked() models.Clip {
	data := make([]byte, len(r.buf))
	copy(data, r.buf)
	return models.Clip{
		MIMEType: r.mimeType,
		Data:     data,
		Duration: r.elapsed,
	}
}
