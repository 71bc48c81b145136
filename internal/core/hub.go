package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/presence"
)

type envelope struct {
	client *Client
	cmd    *Command
}

// Hub runs the session protocol for every connection. All registry
// mutations and fan-out decisions happen on the goroutine executing Run.
type Hub struct {
	registry  *presence.Registry
	room      *Room
	validator *profileValidator
	log       *zerolog.Logger

	now   func() time.Time
	newID func() string

	register chan *Client
	inbox    chan envelope
	done     chan struct{}
}

// NewHub creates a hub backed by the given registry.
func NewHub(registry *presence.Registry, limits Limits, logger *zerolog.Logger) *Hub {
	if registry == nil {
		registry = presence.NewRegistry()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		registry:  registry,
		room:      NewRoom(),
		validator: newProfileValidator(limits),
		log:       logger,
		now:       time.Now,
		newID:     uuid.NewString,
		register:  make(chan *Client),
		inbox:     make(chan envelope, 64),
		done:      make(chan struct{}),
	}
}

// RegisterClient attaches a new connection in the Unjoined state.
// It returns false if the hub has stopped.
func (h *Hub) RegisterClient(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// UnregisterClient ends the client's command stream. The hub processes the
// disconnect after every command already sent. Safe to call more than once.
func (h *Hub) UnregisterClient(c *Client) {
	c.close()
}

// Roster returns a snapshot of the joined participants.
func (h *Hub) Roster() []presence.Participant {
	return h.registry.List()
}

// Run processes registrations and commands until ctx is cancelled.
// On return every attached client has its Events channel closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.log.Debug().Int("connections", h.room.Len()).Msg("hub stopped")
			h.detachAll()
			return
		case c := <-h.register:
			if c == nil || !h.room.AddClient(c) {
				continue
			}
			h.log.Debug().Str("conn_id", c.ID).Int("connections", h.room.Len()).Msg("client attached")
			go h.pump(c)
		case env := <-h.inbox:
			h.handle(env.client, env.cmd)
		}
	}
}

// pump forwards one client's commands into the hub inbox, preserving order,
// and enqueues the disconnect once the command stream is closed.
func (h *Hub) pump(c *Client) {
	for cmd := range c.Commands {
		if cmd == nil {
			continue
		}
		if !h.enqueue(c, cmd) {
			return
		}
	}
	h.enqueue(c, &Command{Kind: commandDisconnect})
}

func (h *Hub) enqueue(c *Client, cmd *Command) bool {
	select {
	case h.inbox <- envelope{client: c, cmd: cmd}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) handle(c *Client, cmd *Command) {
	if !h.room.Has(c) {
		return
	}

	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(c, cmd)
	case CommandSendMessage:
		h.handleSendMessage(c, cmd)
	case CommandTypingStart:
		h.handleTyping(c, EventTypingStarted)
	case CommandTypingStop:
		h.handleTyping(c, EventTypingStopped)
	case commandDisconnect:
		h.handleDisconnect(c)
	default:
		h.reply(c, &Event{Kind: EventSendRejected, Error: NewCoreError(ErrCodeBadRequest, "unknown command")})
	}
}

func (h *Hub) handleJoin(c *Client, cmd *Command) {
	if _, joined := h.registry.Get(c.ID); joined {
		h.reply(c, &Event{Kind: EventJoinRejected, Error: ToCoreError(ErrAlreadyJoined)})
		return
	}

	profile, err := h.validator.profile(cmd.Profile)
	if err != nil {
		h.log.Debug().Err(err).Str("conn_id", c.ID).Msg("join rejected")
		h.reply(c, &Event{Kind: EventJoinRejected, Error: ToCoreError(err)})
		return
	}

	p := h.registry.Register(c.ID, profile, h.now())
	h.broadcast(&Event{Kind: EventParticipantJoined, Participant: p}, c)
	h.reply(c, &Event{Kind: EventJoinAck, Participant: p})

	h.log.Info().
		Str("conn_id", c.ID).
		Str("name", p.Name).
		Int("online", h.registry.Len()).
		Msg("participant joined")
}

func (h *Hub) handleSendMessage(c *Client, cmd *Command) {
	sender, joined := h.registry.Get(c.ID)
	if !joined {
		h.reply(c, &Event{Kind: EventSendRejected, Error: ToCoreError(ErrNotJoined)})
		return
	}
	if err := h.validator.text(cmd.Text); err != nil {
		h.reply(c, &Event{Kind: EventSendRejected, Error: ToCoreError(err)})
		return
	}

	now := h.now()
	h.registry.Update(c.ID, func(p *presence.Participant) {
		p.LastActiveAt = now
	})

	createdAt := now
	if !cmd.SentAt.IsZero() {
		createdAt = cmd.SentAt
	}
	msg := Message{
		ID:        h.newID(),
		Text:      cmd.Text,
		From:      sender,
		CreatedAt: createdAt,
	}

	h.broadcast(&Event{Kind: EventMessage, Message: msg}, c)
	h.reply(c, &Event{Kind: EventMessageAck, Message: Message{ID: msg.ID, CreatedAt: msg.CreatedAt}})
}

func (h *Hub) handleTyping(c *Client, kind EventKind) {
	p, joined := h.registry.Get(c.ID)
	if !joined {
		return
	}
	h.broadcast(&Event{Kind: kind, Participant: p}, c)
}

func (h *Hub) handleDisconnect(c *Client) {
	if !h.room.RemoveClient(c) {
		return
	}
	close(c.Events)

	p, joined := h.registry.Remove(c.ID)
	if !joined {
		h.log.Debug().Str("conn_id", c.ID).Msg("client detached before join")
		return
	}
	h.broadcast(&Event{Kind: EventParticipantLeft, Participant: p}, nil)

	h.log.Info().
		Str("conn_id", c.ID).
		Str("name", p.Name).
		Int("online", h.registry.Len()).
		Msg("participant left")
}

// detachAll ends every session without announcing departures.
func (h *Hub) detachAll() {
	for _, c := range h.room.Drain() {
		close(c.Events)
		h.registry.Remove(c.ID)
	}
}

func (h *Hub) broadcast(ev *Event, except *Client) {
	if dropped := h.room.Broadcast(ev, except); dropped > 0 {
		h.log.Debug().Str("event", ev.Kind.String()).Int("dropped", dropped).Msg("slow consumers skipped")
	}
}

func (h *Hub) reply(c *Client, ev *Event) {
	if !deliver(c, ev) {
		h.log.Debug().Str("conn_id", c.ID).Str("event", ev.Kind.String()).Msg("reply dropped")
	}
}
