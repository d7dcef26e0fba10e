package recorder

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("recorder: session not found")

// sessionTTL is how long an untouched session survives before cleanup
// discards its buffered audio.
const sessionTTL = 10 * time.Minute

// Session is one client's recording in progress, keyed by an opaque token.
// A session owns exactly one Recorder; only one recording per session token
// can be active at a time.
type Session struct {
	ID       string
	RoomID   string
	Recorder *Recorder

	lastSeen time.Time
}

// SessionManager tracks concurrent recording sessions for the chunked
// upload flow and runs the shared one-second duration ticker.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   zerolog.Logger
	done     chan struct{}
	closed   sync.Once

	// Expired is incremented for observability hooks; see metrics wiring in
	// the handlers package.
	onExpire func()
}

// NewSessionManager creates a manager and starts its ticker loop.
func NewSessionManager(logger zerolog.Logger) *SessionManager {
	m := &SessionManager{
		sessions: make(map[string]*Session),
		logger:   logger,
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

// OnExpire registers a callback invoked once per expired session.
func (m *SessionManager) OnExpire(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

// Begin starts a new recording session for a room.
func (m *SessionManager) Begin(roomID, mimeType string) (*Session, error) {
	rec := New()
	if err := rec.Start(mimeType); err != nil {
		return nil, err
	}

	s := &Session{
		ID:       uuid.New().String(),
		RoomID:   roomID,
		Recorder: rec,
		lastSeen: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug().Str("session_id", s.ID).Str("room_id", roomID).Msg("recording session started")
	return s, nil
}

// Get returns a live session and refreshes its expiry.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = time.Now()
	return s, nil
}

// End removes a session, discarding any unfinalized audio.
func (m *SessionManager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Close stops the ticker loop.
func (m *SessionManager) Close() {
	m.closed.Do(func() { close(m.done) })
}

// run ticks every active recording once per second and expires idle
// sessions.
func (m *SessionManager) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.tickAll()
		}
	}
}

func (m *SessionManager) tickAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > sessionTTL {
			delete(m.sessions, id)
			m.logger.Debug().Str("session_id", id).Msg("recording session expired")
			if m.onExpire != nil {
				m.onExpire()
			}
			continue
		}
		s.Recorder.Tick()
	}
}
