// Package analytics wraps the Amplitude SDK behind an explicitly
// constructed client: built once at startup, holding its write key and a
// device-scoped anonymous id, and passed to call sites by reference. An
// absent write key disables tracking entirely; that is a warning at boot,
// never a failure.
package analytics

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/amplitude/analytics-go/amplitude"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const deviceIDFile = "device_id"

// Client sends product analytics events. A nil-keyed client drops every
// event after logging it at debug level.
type Client struct {
	amp      amplitude.Client
	deviceID string
	logger   zerolog.Logger
	common   map[string]interface{}
}

// New constructs the analytics client. dataDir holds the persisted
// anonymous device id so the same installation keeps one identity across
// restarts.
func New(apiKey, dataDir, version string, logger zerolog.Logger) *Client {
	c := &Client{
		logger: logger,
		common: map[string]interface{}{
			"server_version": version,
		},
	}

	if apiKey == "" {
		logger.Warn().Msg("analytics write key is not set, events will not be sent")
		return c
	}

	c.deviceID = loadOrCreateDeviceID(dataDir, logger)
	c.amp = amplitude.NewClient(amplitude.NewConfig(apiKey))
	logger.Info().Str("device_id", c.deviceID).Msg("analytics enabled")
	return c
}

// Track sends one event with the client's common properties merged in.
// Never blocks the caller beyond the SDK's internal queueing.
func (c *Client) Track(eventType string, props map[string]interface{}) {
	if c.amp == nil {
		c.logger.Debug().Str("event", eventType).Msg("analytics disabled, dropping event")
		return
	}

	merged := make(map[string]interface{}, len(c.common)+len(props))
	for k, v := range c.common {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}

	c.amp.Track(amplitude.Event{
		EventType:       eventType,
		EventOptions:    amplitude.EventOptions{DeviceID: c.deviceID},
		EventProperties: merged,
	})
}

// Close flushes queued events and shuts the SDK down.
func (c *Client) Close() {
	if c.amp != nil {
		c.amp.Shutdown()
	}
}

// loadOrCreateDeviceID reads the persisted anonymous id, minting and saving
// a new one on first run. Falls back to an ephemeral id if the data dir is
// unwritable.
func loadOrCreateDeviceID(dataDir string, logger zerolog.Logger) string {
	path := filepath.Join(dataDir, deviceIDFile)
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(dataDir, 0755); err == nil {
		if err := os.WriteFile(path, []byte(id+"\n"), 0644); err != nil {
			logger.Warn().Err(err).Msg("could not persist analytics device id")
		}
	} else {
		logger.Warn().Err(err).Msg("could not persist analytics device id")
	}
	return id
}
