// sorabang CLI - command line client for the voice letter server
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/salmonco/sorabang/clients/go/sorabang"
	"github.com/salmonco/sorabang/internal/player"
	"github.com/salmonco/sorabang/internal/recorder"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("SORABANG_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := sorabang.NewClient(baseURL)
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "create":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: sorabang create <title>")
			os.Exit(1)
		}
		resp, err := client.CreateRoom(os.Args[2])
		exitOnError(err)
		fmt.Printf("Room created: %s\n", resp.ID)
		fmt.Printf("  Manage: %s/room/%s/manage\n", baseURL, resp.ID)
		fmt.Printf("  Join:   %s/room/%s/join\n", baseURL, resp.ID)
		fmt.Printf("  Listen: %s/room/%s/listen\n", baseURL, resp.ID)

	case "room":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: sorabang room <room_id>")
			os.Exit(1)
		}
		resp, err := client.GetRoom(os.Args[2])
		exitOnError(err)
		fmt.Printf("%s (%d messages)\n", resp.Title, len(resp.Messages))
		for i, msg := range resp.Messages {
			ts := msg.CreatedAt.Format("2006-01-02 15:04:05")
			fmt.Printf("  %2d. [%s] %s (%ds)\n", i+1, ts, msg.Nickname, msg.Duration)
		}

	case "send":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Usage: sorabang send <room_id> <nickname> <audio_file>")
			os.Exit(1)
		}
		roomID, nickname, path := os.Args[2], os.Args[3], os.Args[4]

		// Capture through the recorder so the device and duration rules
		// match a live recording; ctrl-c discards the capture.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		rec := recorder.New()
		exitOnError(recorder.Capture(ctx, &recorder.FileDevice{Path: path}, rec))

		clip, ok := rec.Clip()
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: capture did not produce a clip")
			os.Exit(1)
		}

		resp, err := client.SubmitMessage(roomID, nickname, path, bytes.NewReader(clip.Data), clip.Duration)
		exitOnError(err)
		fmt.Printf("Sent: %s (%ds)\n", resp.ID, resp.Duration)

	case "listen":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: sorabang listen <room_id>")
			os.Exit(1)
		}
		resp, err := client.GetRoom(os.Args[2])
		exitOnError(err)
		listen(resp)

	case "stats":
		resp, err := client.Stats()
		exitOnError(err)
		fmt.Printf("Rooms: %d  Messages: %d  Last activity: %s\n",
			resp.TotalRooms, resp.TotalMessages, resp.LastActivity)
		for _, r := range resp.TopRooms {
			fmt.Printf("  %s  %s\n", r.ID, r.Title)
		}

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

// listen steps through a room's queue in arrival order, waiting out each
// message's duration before advancing.
func listen(room *sorabang.Room) {
	if len(room.Messages) == 0 {
		fmt.Println("No messages yet.")
		return
	}

	tracks := make([]player.Track, len(room.Messages))
	for i, msg := range room.Messages {
		tracks[i] = player.Track{
			ID:       msg.ID,
			Title:    msg.Nickname,
			URL:      msg.AudioURL,
			Duration: msg.Duration,
		}
	}

	seq := player.New(tracks, &consoleOutput{})
	fmt.Printf("%s - %d messages\n", room.Title, len(tracks))
	exitOnError(seq.Play())

	for seq.IsPlaying() {
		track, ok := seq.Current()
		if !ok {
			break
		}
		time.Sleep(time.Duration(track.Duration) * time.Second)
		exitOnError(seq.OnTrackEnd())
	}
	fmt.Println("End of queue.")
}

// consoleOutput is a playback sink that narrates instead of producing audio.
type consoleOutput struct{}

func (o *consoleOutput) Play(t player.Track) error {
	fmt.Printf("  ▶ %s (%ds)\n", t.Title, t.Duration)
	return nil
}

func (o *consoleOutput) Pause() { fmt.Println("  ⏸ paused") }
func (o *consoleOutput) Stop()  {}

func (o *consoleOutput) SetVolume(volume int, muted bool) {}

func usage() {
	fmt.Println(`sorabang CLI - voice letter radio rooms

Usage: sorabang <command> [options]

Commands:
  create <title>                          Create a new room
  room <room_id>                          Show a room and its messages
  send <room_id> <nick> <file>            Capture an audio file as a message
  listen <room_id>                        Play through a room's queue
  stats                                   Show server statistics
  health                                  Check server health

Environment:
  SORABANG_URL   Server URL (default: http://localhost:8080)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
