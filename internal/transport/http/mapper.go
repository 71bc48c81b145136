package http

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/presence"
	"github.com/vovakirdan/lobbychat/internal/proto"
)

// inboundToCommand decodes one inbound envelope. A non-nil *proto.Error
// means the frame is rejected and the connection stays usable.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := decodeData(inbound.Data, &join); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "invalid join payload"}
		}
		return &core.Command{
			Kind: core.CommandJoin,
			Profile: presence.Profile{
				Name:      join.Name,
				Gender:    join.Gender,
				Region:    join.Region,
				AvatarRef: join.AvatarRef,
			},
		}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.MsgData
		if err := decodeData(inbound.Data, &msg); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "invalid message payload"}
		}
		cmd := &core.Command{
			Kind: core.CommandSendMessage,
			Text: msg.Text,
		}
		if msg.TS > 0 {
			cmd.SentAt = time.UnixMilli(msg.TS)
		}
		return cmd, nil
	case proto.InboundTypeTypingStart:
		return &core.Command{Kind: core.CommandTypingStart}, nil
	case proto.InboundTypeTypingStop:
		return &core.Command{Kind: core.CommandTypingStop}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeValidation, Msg: "unknown message type"}
	}
}

// decodeData requires a JSON object; unknown fields are ignored.
func decodeData(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	return json.Unmarshal(trimmed, v)
}

func profileFromParticipant(p presence.Participant) proto.Profile {
	return proto.Profile{
		ConnectionID: p.ConnectionID,
		Name:         p.Name,
		Gender:       p.Gender,
		Region:       p.Region,
		AvatarRef:    p.AvatarRef,
		JoinedAt:     p.JoinedAt.UnixMilli(),
	}
}

func rosterFromParticipants(participants []presence.Participant) proto.Roster {
	return proto.Roster{
		Users: lo.Map(participants, func(p presence.Participant, _ int) proto.Profile {
			return profileFromParticipant(p)
		}),
		Count: len(participants),
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventParticipantJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventParticipantJoined,
			Data:  profileFromParticipant(event.Participant),
		}
	case core.EventJoinAck:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventJoinAck,
			Data:  profileFromParticipant(event.Participant),
		}
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessage,
			Data: proto.MessagePayload{
				ID:     event.Message.ID,
				Text:   event.Message.Text,
				Sender: profileFromParticipant(event.Message.From),
				TS:     event.Message.CreatedAt.UnixMilli(),
			},
		}
	case core.EventMessageAck:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageAck,
			Data: proto.MessageAckPayload{
				ID: event.Message.ID,
				TS: event.Message.CreatedAt.UnixMilli(),
			},
		}
	case core.EventTypingStarted, core.EventTypingStopped:
		name := proto.EventTypingStarted
		if event.Kind == core.EventTypingStopped {
			name = proto.EventTypingStopped
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: name,
			Data: proto.TypingPayload{
				ConnectionID: event.Participant.ConnectionID,
				Name:         event.Participant.Name,
			},
		}
	case core.EventParticipantLeft:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventParticipantLeft,
			Data:  profileFromParticipant(event.Participant),
		}
	case core.EventJoinRejected, core.EventSendRejected:
		name := proto.EventJoinRejected
		if event.Kind == core.EventSendRejected {
			name = proto.EventSendRejected
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Event: name,
			Error: protoError(event.Error),
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func protoError(err *core.CoreError) *proto.Error {
	if err == nil {
		return &proto.Error{Code: "unknown", Msg: "unknown error"}
	}
	return &proto.Error{Code: err.Code, Msg: err.Message}
}
