package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/queue"
)

type fakeReminders struct {
	calls []time.Time
	err   error
}

func (f *fakeReminders) Dispatch(_ context.Context, at time.Time) (int, error) {
	f.calls = append(f.calls, at)
	return 2, f.err
}

type fakeSessions struct {
	calls int
	err   error
}

func (f *fakeSessions) PurgeExpiredSessions(context.Context) (int, error) {
	f.calls++
	return 1, f.err
}

func TestHandleReminders(t *testing.T) {
	r := &fakeReminders{}
	p := NewProcessor(r, &fakeSessions{}, zerolog.Nop())

	err := p.Handle(context.Background(), queue.Task{Type: "reminders", Fields: map[string]string{"at": "2024-03-01T08:00:00Z"}})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	want := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	if len(r.calls) != 1 || !r.calls[0].Equal(want) {
		t.Fatalf("calls = %v", r.calls)
	}
}

func TestHandleRemindersDropsMalformedTime(t *testing.T) {
	r := &fakeReminders{}
	p := NewProcessor(r, &fakeSessions{}, zerolog.Nop())

	if err := p.Handle(context.Background(), queue.Task{Type: "reminders", Fields: map[string]string{"at": "soon"}}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(r.calls) != 0 {
		t.Fatal("dispatched with malformed time")
	}
}

func TestHandleSurfacesFailures(t *testing.T) {
	boom := errors.New("store down")
	p := NewProcessor(&fakeReminders{err: boom}, &fakeSessions{err: boom}, zerolog.Nop())

	if err := p.Handle(context.Background(), queue.Task{Type: "session_cleanup"}); !errors.Is(err, boom) {
		t.Fatalf("cleanup err = %v", err)
	}
	if err := p.Handle(context.Background(), queue.Task{Type: "reminders", Fields: map[string]string{"at": "2024-03-01T08:00:00Z"}}); !errors.Is(err, boom) {
		t.Fatalf("reminders err = %v", err)
	}
}

func TestHandleUnknownTask(t *testing.T) {
	s := &fakeSessions{}
	p := NewProcessor(&fakeReminders{}, s, zerolog.Nop())

	if err := p.Handle(context.Background(), queue.Task{Type: "nsfw"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if s.calls != 0 {
		t.Fatal("unknown task reached a handler")
	}
}
