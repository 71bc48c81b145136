package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/lobbychat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8000/ws", "WebSocket address")
	name := flag.String("name", "tester", "display name to join with")
	gender := flag.String("gender", "other", "gender label")
	region := flag.String("region", "local", "region label")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeJoin, proto.JoinData{Name: *name, Gender: *gender, Region: *region}); err != nil {
		return err
	}

	for {
		var outbound struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", outbound.Type)
		if outbound.Event != "" {
			fmt.Printf(" event=%s", outbound.Event)
		}
		fmt.Println()

		if outbound.Error != nil {
			return fmt.Errorf("server error %s: %s", outbound.Error.Code, outbound.Error.Msg)
		}

		switch outbound.Event {
		case proto.EventJoinAck:
			var p proto.Profile
			if err := json.Unmarshal(outbound.Data, &p); err == nil {
				fmt.Printf("Joined as %s (%s)\n", p.Name, p.ConnectionID)
			}
			if err := send(proto.InboundTypeSendMessage, proto.MsgData{Text: *text, TS: time.Now().UnixMilli()}); err != nil {
				return err
			}
		case proto.EventMessageAck:
			var ack proto.MessageAckPayload
			if err := json.Unmarshal(outbound.Data, &ack); err != nil {
				return fmt.Errorf("unmarshal ack: %w", err)
			}
			fmt.Printf("Delivered: id=%s ts=%d\n", ack.ID, ack.TS)
			return nil
		case proto.EventMessage:
			var evt proto.MessagePayload
			if err := json.Unmarshal(outbound.Data, &evt); err == nil {
				fmt.Printf("Message: from=%s text=%q\n", evt.Sender.Name, evt.Text)
			}
		case proto.EventParticipantJoined, proto.EventParticipantLeft:
			var p proto.Profile
			if err := json.Unmarshal(outbound.Data, &p); err == nil {
				fmt.Printf("%s: %s from %s\n", outbound.Event, p.Name, p.Region)
			}
		default:
			// keep looping for the ack
		}
	}
}
