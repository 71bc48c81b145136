package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/vovakirdan/lobbychat/internal/presence"
)

func benchmarkBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(presence.NewRegistry(), DefaultLimits(), nil)
	go hub.Run(ctx)

	sender := NewClient("sender", 0)
	hub.RegisterClient(sender)
	sender.Commands <- &Command{Kind: CommandJoin, Profile: presence.Profile{Name: "sender", Gender: "N", Region: "EU"}}
	for ev := range sender.Events {
		if ev.Kind == EventJoinAck {
			break
		}
	}

	clients := make([]*Client, 0, recipients)
	for i := range recipients {
		c := NewClient(fmt.Sprintf("c%d", i), 0)
		hub.RegisterClient(c)
		clients = append(clients, c)
	}

	// Drain events for all but the first recipient to avoid channel backpressure.
	target := clients[0]
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}
	go func() {
		for range sender.Events {
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- &Command{Kind: CommandSendMessage, Text: "payload"}
		for ev := range target.Events {
			if ev.Kind == EventMessage {
				break
			}
		}
	}
}

func BenchmarkBroadcast_10(b *testing.B)  { benchmarkBroadcast(b, 10) }
func BenchmarkBroadcast_100(b *testing.B) { benchmarkBroadcast(b, 100) }
func BenchmarkBroadcast_500(b *testing.B) { benchmarkBroadcast(b, 500) }
