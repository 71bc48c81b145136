package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin        = "join"
	InboundTypeSendMessage = "send_message"
	InboundTypeTypingStart = "typing_start"
	InboundTypeTypingStop  = "typing_stop"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventParticipantJoined = "participant_joined"
	EventJoinAck           = "join_ack"
	EventJoinRejected      = "join_rejected"
	EventMessage           = "message"
	EventMessageAck        = "message_ack"
	EventSendRejected      = "send_rejected"
	EventTypingStarted     = "typing_started"
	EventTypingStopped     = "typing_stopped"
	EventParticipantLeft   = "participant_left"
)

// JoinData announces the participant profile.
type JoinData struct {
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Region    string `json:"region"`
	AvatarRef string `json:"avatar_ref,omitempty"`
}

// MsgData is a chat message from the client. Sender identity is never
// taken from the payload.
type MsgData struct {
	Text string `json:"text"`
	TS   int64  `json:"ts,omitempty"` // unix milliseconds
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Profile is the public view of a participant.
type Profile struct {
	ConnectionID string `json:"connection_id"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	Region       string `json:"region"`
	AvatarRef    string `json:"avatar_ref,omitempty"`
	JoinedAt     int64  `json:"joined_at"`
}

// MessagePayload is a chat message relayed to the other connections.
type MessagePayload struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Sender Profile `json:"sender"`
	TS     int64   `json:"ts"`
}

// MessageAckPayload confirms delivery to the sender.
type MessageAckPayload struct {
	ID string `json:"id"`
	TS int64  `json:"ts"`
}

// TypingPayload relays typing_start and typing_stop.
type TypingPayload struct {
	ConnectionID string `json:"connection_id"`
	Name         string `json:"name"`
}

// Roster is the body of the connected-users endpoint.
type Roster struct {
	Users []Profile `json:"users"`
	Count int       `json:"count"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
