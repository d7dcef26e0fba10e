// Package sorabang provides a client for the sorabang voice letter API.
package sorabang

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"
)

// Client is a sorabang API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new client for the given server.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// doRequest performs an HTTP request with a JSON or empty body.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("sorabang error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// Message is one voice letter in a room.
type Message struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	AudioURL  string    `json:"audio_url"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}

// Room is a room with its collected messages.
type Room struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	Title string `json:"title"`
}

// CreateRoom creates a new room.
func (c *Client) CreateRoom(title string) (*Room, error) {
	body, _ := json.Marshal(CreateRoomRequest{Title: title})
	respBody, err := c.doRequest("POST", "/api/rooms", body)
	if err != nil {
		return nil, err
	}

	var resp Room
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRoom retrieves a room and all of its messages.
func (c *Client) GetRoom(roomID string) (*Room, error) {
	respBody, err := c.doRequest("GET", "/api/rooms/"+roomID, nil)
	if err != nil {
		return nil, err
	}

	var resp Room
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitMessage uploads a finished recording to a room in one shot.
// filename decides the reported content type; duration is in seconds.
func (c *Client) SubmitMessage(roomID, nickname, filename string, audio io.Reader, duration int) (*Message, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("nickname", nickname); err != nil {
		return nil, err
	}
	if err := mw.WriteField("duration", strconv.Itoa(duration)); err != nil {
		return nil, err
	}

	fw, err := mw.CreateFormFile("audio", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.BaseURL+"/api/rooms/"+roomID+"/messages", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp Message
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordingState mirrors the server's view of a recording session.
type RecordingState struct {
	SessionID   string `json:"session_id"`
	Status      string `json:"status"`
	Elapsed     int    `json:"elapsed"`
	MaxDuration int    `json:"max_duration"`
}

// StartRecording opens a chunked recording session in a room.
func (c *Client) StartRecording(roomID, mimeType string) (*RecordingState, error) {
	body, _ := json.Marshal(map[string]string{"mime_type": mimeType})
	respBody, err := c.doRequest("POST", "/api/rooms/"+roomID+"/recordings", body)
	if err != nil {
		return nil, err
	}

	var resp RecordingState
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendChunk appends raw audio bytes to an open recording session.
func (c *Client) SendChunk(sessionID string, chunk []byte) (*RecordingState, error) {
	req, err := http.NewRequest("POST", c.BaseURL+"/api/recordings/"+sessionID+"/chunks", bytes.NewReader(chunk))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp RecordingState
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopRecording ends capture for a session, keeping the audio for submit.
func (c *Client) StopRecording(sessionID string) (*RecordingState, error) {
	respBody, err := c.doRequest("POST", "/api/recordings/"+sessionID+"/stop", nil)
	if err != nil {
		return nil, err
	}

	var resp RecordingState
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DiscardRecording throws a session away without submitting.
func (c *Client) DiscardRecording(sessionID string) error {
	_, err := c.doRequest("DELETE", "/api/recordings/"+sessionID, nil)
	return err
}

// SubmitRecording turns a stopped session into a message in its room.
func (c *Client) SubmitRecording(sessionID, nickname string) (*Message, error) {
	body, _ := json.Marshal(map[string]string{"nickname": nickname})
	respBody, err := c.doRequest("POST", "/api/recordings/"+sessionID+"/submit", body)
	if err != nil {
		return nil, err
	}

	var resp Message
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RoomStats is one entry in the stats leaderboard.
type RoomStats struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// StatsResponse is the response from the stats endpoint.
type StatsResponse struct {
	TotalRooms    int64       `json:"total_rooms"`
	TotalMessages int64       `json:"total_messages"`
	LastActivity  string      `json:"last_activity"`
	TopRooms      []RoomStats `json:"top_rooms"`
}

// Stats retrieves server-wide statistics.
func (c *Client) Stats() (*StatsResponse, error) {
	respBody, err := c.doRequest("GET", "/api/stats", nil)
	if err != nil {
		return nil, err
	}

	var resp StatsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Checks    map[string]interface{} `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	respBody, err := c.doRequest("GET", "/health", nil)
	if err != nil {
		return nil, err
	}

	var resp HealthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
