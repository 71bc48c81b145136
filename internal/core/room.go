package core

// Room groups every connection attached to the hub. There is a single room:
// all broadcasts reach every other connection, joined or not.
type Room struct {
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom() *Room {
	return &Room{
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Has reports whether the client is attached.
func (r *Room) Has(c *Client) bool {
	_, ok := r.clients[c]
	return ok
}

// Broadcast sends an event to every client except the given one and
// returns how many recipients dropped it.
func (r *Room) Broadcast(event *Event, except *Client) int {
	dropped := 0
	for client := range r.clients {
		if client == except {
			continue
		}
		if !deliver(client, event) {
			dropped++
		}
	}
	return dropped
}

// Drain removes and returns every client.
func (r *Room) Drain() []*Client {
	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	clear(r.clients)
	return out
}

// Len returns the number of attached clients.
func (r *Room) Len() int {
	return len(r.clients)
}

func deliver(c *Client, event *Event) bool {
	select {
	case c.Events <- event:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}
