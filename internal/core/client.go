package core

import "sync"

const defaultClientBuffer = 16

// Client is one transport connection as seen by the core layer.
// The transport writes to Commands and reads from Events; the hub closes
// Events once the connection's disconnect has been processed.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, buffer),
		Events:   make(chan *Event, buffer),
	}
}

// close stops accepting commands. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.Commands)
	})
}
