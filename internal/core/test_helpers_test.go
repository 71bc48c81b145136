package core

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/lobbychat/internal/presence"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// expectNoEvent fails if any event arrives on ch within the wait window.
func expectNoEvent(t *testing.T, ch <-chan *Event, wait time.Duration) {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if ok && ev != nil {
			t.Fatalf("unexpected event %v: %+v", ev.Kind, ev)
		}
	case <-time.After(wait):
	}
}

func startHub(t *testing.T) (*Hub, *presence.Registry) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	registry := presence.NewRegistry()
	hub := NewHub(registry, DefaultLimits(), nil)
	go hub.Run(ctx)
	return hub, registry
}

func attach(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()

	c := NewClient(id, 0)
	if !hub.RegisterClient(c) {
		t.Fatalf("hub refused client %s", id)
	}
	return c
}

func join(c *Client, name, gender, region string) {
	c.Commands <- &Command{
		Kind:    CommandJoin,
		Profile: presence.Profile{Name: name, Gender: gender, Region: region},
	}
}

func waitForLen(t *testing.T, r *presence.Registry, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.Len() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("registry size = %d, want %d", r.Len(), want)
}
