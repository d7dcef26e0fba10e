package models

// Clip is an in-memory captured recording that has not been submitted yet.
// The audio bytes are opaque encoded media from the capture side; the server
// never transcodes them.
type Clip struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
	Duration int    `json:"duration"` // seconds
}

// Empty reports whether the clip holds no audio.
func (c Clip) Empty() bool {
	return len(c.Data) == 0
}
