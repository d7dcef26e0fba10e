package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/salmonco/sorabang/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestCreateAndGetRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.CreateRoom(ctx, "abc123de", "My Room")
	if err != nil {
		t.Fatal(err)
	}
	if room.ID != "abc123de" || room.Title != "My Room" {
		t.Fatalf("unexpected room %+v", room)
	}

	got, err := s.GetRoom(ctx, "abc123de")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "abc123de" {
		t.Fatalf("unexpected lookup result %+v", got)
	}
}

func TestGetRoomMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetRoom(context.Background(), "nothere1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("missing room must be (nil, nil), got %+v", got)
	}
}

func TestDuplicateRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "abc123de", "first"); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateRoom(ctx, "abc123de", "second")
	if !errors.Is(err, ErrDuplicateRoom) {
		t.Fatalf("expected ErrDuplicateRoom, got %v", err)
	}
}

func TestAppendAndListMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "abc123de", "My Room"); err != nil {
		t.Fatal(err)
	}

	first, err := s.AppendMessage(ctx, "abc123de", models.MessageInput{
		Nickname: "A", AudioURL: "data:audio/webm;base64,YQ==", Duration: 30,
	})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.AppendMessage(ctx, "abc123de", models.MessageInput{
		Nickname: "B", AudioURL: "data:audio/webm;base64,Yg==", Duration: 45,
	})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID >= second.ID {
		t.Fatalf("ids must be time-ordered: %s then %s", first.ID, second.ID)
	}

	msgs, err := s.ListMessages(ctx, "abc123de")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Nickname != "A" || msgs[1].Nickname != "B" {
		t.Fatalf("arrival order violated: %+v", msgs)
	}
}

func TestAppendToMissingRoom(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AppendMessage(context.Background(), "nothere1", models.MessageInput{
		Nickname: "A", AudioURL: "x", Duration: 10,
	})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestAggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.MostRecentActivity(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty != nil {
		t.Fatalf("expected nil activity on empty store, got %v", empty)
	}

	if _, err := s.CreateRoom(ctx, "roomaaa1", "busy"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRoom(ctx, "roombbb2", "quiet"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.AppendMessage(ctx, "roomaaa1", models.MessageInput{
			Nickname: "A", AudioURL: "x", Duration: 10,
		}); err != nil {
			t.Fatal(err)
		}
	}

	rooms, err := s.CountRooms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rooms != 2 {
		t.Fatalf("expected 2 rooms, got %d", rooms)
	}

	messages, err := s.CountMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if messages != 3 {
		t.Fatalf("expected 3 messages, got %d", messages)
	}

	activity, err := s.MostRecentActivity(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if activity == nil {
		t.Fatal("expected activity timestamp")
	}

	top, err := s.TopRooms(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].ID != "roomaaa1" {
		t.Fatalf("expected busy room on top, got %+v", top)
	}
}
