package core

import "github.com/vovakirdan/lobbychat/internal/presence"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventParticipantJoined tells the other connections about a new participant.
	EventParticipantJoined EventKind = iota
	// EventJoinAck confirms a successful join to the joining connection.
	EventJoinAck
	// EventJoinRejected tells the joining connection why the join failed.
	EventJoinRejected
	// EventMessage delivers a chat message to the other connections.
	EventMessage
	// EventMessageAck confirms delivery to the sender with the message id.
	EventMessageAck
	// EventSendRejected tells the sender why the message was not broadcast.
	EventSendRejected
	// EventTypingStarted relays a typing_start signal.
	EventTypingStarted
	// EventTypingStopped relays a typing_stop signal.
	EventTypingStopped
	// EventParticipantLeft tells the remaining connections that a participant disconnected.
	EventParticipantLeft
)

func (k EventKind) String() string {
	switch k {
	case EventParticipantJoined:
		return "participant_joined"
	case EventJoinAck:
		return "join_ack"
	case EventJoinRejected:
		return "join_rejected"
	case EventMessage:
		return "message"
	case EventMessageAck:
		return "message_ack"
	case EventSendRejected:
		return "send_rejected"
	case EventTypingStarted:
		return "typing_started"
	case EventTypingStopped:
		return "typing_stopped"
	case EventParticipantLeft:
		return "participant_left"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind        EventKind
	Participant presence.Participant // joined, ack, typing and left events
	Message     Message              // EventMessage; EventMessageAck carries only ID and CreatedAt
	Error       *CoreError           // rejected events
}
