package core

import (
	"time"

	"github.com/vovakirdan/lobbychat/internal/presence"
)

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin registers the connection as a participant.
	CommandJoin CommandKind = iota
	// CommandSendMessage broadcasts a chat message to the other connections.
	CommandSendMessage
	// CommandTypingStart announces that the participant started typing.
	CommandTypingStart
	// CommandTypingStop announces that the participant stopped typing.
	CommandTypingStop

	// commandDisconnect is enqueued by the hub itself after the client's
	// command stream ends.
	commandDisconnect
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoin:
		return "join"
	case CommandSendMessage:
		return "send_message"
	case CommandTypingStart:
		return "typing_start"
	case CommandTypingStop:
		return "typing_stop"
	case commandDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	Profile presence.Profile // CommandJoin
	Text    string           // CommandSendMessage
	SentAt  time.Time        // CommandSendMessage, optional client timestamp
}
