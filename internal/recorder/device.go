package recorder

import (
	"context"
	"io"
	"os"
	"time"
)

// Device is a source of encoded audio. The CLI uses a file-backed device;
// browsers push chunks over HTTP instead and never open a Device here.
type Device interface {
	// Open starts the capture stream. A denied device surfaces as
	// *PermissionError.
	Open(ctx context.Context) (io.ReadCloser, string, error)
}

// FileDevice reads pre-encoded audio from a file, standing in for a
// microphone on the CLI side.
type FileDevice struct {
	Path     string
	MIMEType string
}

// Open opens the backing file.
func (d *FileDevice) Open(ctx context.Context) (io.ReadCloser, string, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, "", &PermissionError{Err: err}
		}
		return nil, "", err
	}
	mime := d.MIMEType
	if mime == "" {
		mime = "audio/webm"
	}
	return f, mime, nil
}

// Capture drains a device into a fresh recording, ticking the duration
// counter once per wall-clock second, until the stream ends, the context is
// cancelled, or the cap stops the recording. On success the finalized clip
// is available from rec.Clip().
func Capture(ctx context.Context, dev Device, rec *Recorder) error {
	stream, mimeType, err := dev.Open(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := rec.Start(mimeType); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	// done releases the reader goroutine when capture returns early; a
	// pending chunk send would otherwise park it forever.
	done := make(chan struct{})
	defer close(done)

	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(chunks)
		for {
			buf := make([]byte, 32*1024)
			n, err := stream.Read(buf)
			if n > 0 {
				select {
				case chunks <- buf[:n]:
				case <-done:
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			rec.Reset()
			return ctx.Err()
		case <-ticker.C:
			rec.Tick()
			if rec.Status() == StatusStopped {
				// Hit the cap; the clip is already finalized.
				return nil
			}
		case err := <-readErr:
			rec.Reset()
			return err
		case chunk, ok := <-chunks:
			if !ok {
				if rec.Status() == StatusRecording {
					_, err := rec.Stop()
					return err
				}
				return nil
			}
			if err := rec.AppendChunk(chunk); err != nil {
				return err
			}
		}
	}
}
