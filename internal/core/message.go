package core

import (
	"time"

	"github.com/vovakirdan/lobbychat/internal/presence"
)

// Message is a chat message as broadcast by the hub. It is never stored.
type Message struct {
	ID        string
	Text      string
	From      presence.Participant // copied from the registry at send time
	CreatedAt time.Time
}
