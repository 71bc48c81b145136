package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/config"
	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/presence"
	"github.com/vovakirdan/lobbychat/internal/proto"
	"github.com/vovakirdan/lobbychat/internal/upload"
)

// rawOutbound keeps data undecoded so each test can pick the payload type.
type rawOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

type testEnv struct {
	server   *httptest.Server
	registry *presence.Registry
	uploads  *upload.Store
	wsURL    string
	stopHub  context.CancelFunc
}

func startTestServer(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Upload.Dir = t.TempDir()
	for _, m := range mutate {
		m(&cfg)
	}

	disabledLogger := zerolog.New(nil)
	registry := presence.NewRegistry()
	hub := core.NewHub(registry, cfg.Limits, &disabledLogger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	uploads, err := upload.NewStore(cfg.Upload.Dir, cfg.Upload.URLPrefix, cfg.Upload.MaxBytes)
	if err != nil {
		t.Fatalf("upload store: %v", err)
	}

	server := NewServer(hub, uploads, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		server:   ts,
		registry: registry,
		uploads:  uploads,
		wsURL:    strings.Replace(ts.URL, "http", "ws", 1) + "/ws",
		stopHub:  cancel,
	}
}

func dial(t *testing.T, ctx context.Context, env *testEnv) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, env.wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		t.Fatalf("send %s: %v", typ, err)
	}
}

// readUntil reads frames until one matches event (or type "error" when event is empty).
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) rawOutbound {
	t.Helper()

	for {
		var out rawOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("waiting for %q: %v", event, err)
		}
		if event == "" && out.Type == proto.OutboundTypeError && out.Event == "" {
			return out
		}
		if event != "" && out.Event == event {
			return out
		}
	}
}

// expectSilence fails if conn receives any frame within wait. The library
// closes a connection whose read context expires, so call it last.
func expectSilence(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	var out rawOutbound
	if err := wsjson.Read(ctx, conn, &out); err == nil {
		t.Fatalf("unexpected frame: type=%s event=%s data=%s", out.Type, out.Event, out.Data)
	}
}

func joinAs(t *testing.T, ctx context.Context, conn *websocket.Conn, name, gender, region string) proto.Profile {
	t.Helper()

	send(t, ctx, conn, proto.InboundTypeJoin, proto.JoinData{Name: name, Gender: gender, Region: region})
	out := readUntil(t, ctx, conn, proto.EventJoinAck)

	var p proto.Profile
	if err := json.Unmarshal(out.Data, &p); err != nil {
		t.Fatalf("decode join ack: %v", err)
	}
	return p
}
