package server

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oxygene76/orrery/internal/types"
	"github.com/oxygene76/orrery/pkg/controller"
	"github.com/oxygene76/orrery/pkg/utils"
)

type testServer struct {
	srv     *Server
	ctrl    *controller.Controller
	metrics *Metrics
	http    *httptest.Server
}

func startServer(t *testing.T, tweak func(*utils.Config)) *testServer {
	t.Helper()
	cfg := utils.DefaultConfig()
	cfg.Simulation.RandSeed = 3
	cfg.Server.FrameEvery = 1
	if tweak != nil {
		tweak(cfg)
	}

	metrics := NewMetrics()
	ctrl := controller.New(controller.Options{Config: cfg, Observer: metrics})
	srv := New(cfg.Server, ctrl, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub().Run(ctx)
	done := make(chan struct{})
	go func() {
		ctrl.Run(ctx, srv.Publish)
		close(done)
	}()

	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		cancel()
		<-done
		ctrl.Close()
	})
	return &testServer{srv: srv, ctrl: ctrl, metrics: metrics, http: hs}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial failed (status %d): %v", status, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, id, kind string, payload any) {
	t.Helper()
	msg := types.Message{Type: kind, ID: id}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		msg.Payload = raw
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

// await reads until a message matches, skipping broadcast frames
func await(t *testing.T, conn *websocket.Conn, match func(types.Message) bool) types.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg types.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func reply(id string) func(types.Message) bool {
	return func(m types.Message) bool { return m.ID == id && m.Type != types.MessageFrame }
}

func TestSnapshotOnConnect(t *testing.T) {
	ts := startServer(t, nil)
	conn := ts.dial(t)

	msg := await(t, conn, func(m types.Message) bool {
		if m.Type != types.MessageFrame {
			return false
		}
		var f types.Frame
		return json.Unmarshal(m.Payload, &f) == nil && f.Addressable != nil
	})

	var f types.Frame
	if err := json.Unmarshal(msg.Payload, &f); err != nil {
		t.Fatal(err)
	}
	if len(f.Addressable) != 6 || len(f.Orbits) != 5 {
		t.Errorf("unexpected snapshot: %d entries, %d orbits", len(f.Addressable), len(f.Orbits))
	}
	for _, o := range f.Orbits {
		if len(o.Points) == 0 {
			t.Errorf("snapshot orbit %s has no points", o.Planet)
		}
	}
}

func TestCommandsOverWebsocket(t *testing.T) {
	ts := startServer(t, nil)
	conn := ts.dial(t)

	send(t, conn, "1", controller.CmdAddPlanet, controller.AddPlanet{Name: "Vulcan"})
	ack := await(t, conn, reply("1"))
	if ack.Type != types.MessageAck {
		t.Fatalf("expected ack, got %s: %s", ack.Type, ack.Payload)
	}
	var created controller.Created
	if err := json.Unmarshal(ack.Payload, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID != "planet-5" || created.Name != "Vulcan" {
		t.Errorf("unexpected reply %+v", created)
	}

	send(t, conn, "2", controller.CmdAddPlanet, controller.AddPlanet{Name: "VULCAN"})
	rej := await(t, conn, reply("2"))
	if rej.Type != types.MessageError {
		t.Fatalf("expected error, got %s", rej.Type)
	}
	var ep types.ErrorPayload
	if err := json.Unmarshal(rej.Payload, &ep); err != nil {
		t.Fatal(err)
	}
	if ep.Codespace != "orrery" || ep.Code != 2 || !strings.Contains(ep.Message, "duplicate name") {
		t.Errorf("unexpected error payload %+v", ep)
	}

	send(t, conn, "3", "warp", nil)
	rej = await(t, conn, reply("3"))
	json.Unmarshal(rej.Payload, &ep)
	if rej.Type != types.MessageError || ep.Code != 9 {
		t.Errorf("expected unknown command, got %s %+v", rej.Type, ep)
	}

	send(t, conn, "4", controller.CmdSnapshot, nil)
	snap := await(t, conn, func(m types.Message) bool { return m.ID == "4" })
	var f types.Frame
	if err := json.Unmarshal(snap.Payload, &f); err != nil {
		t.Fatal(err)
	}
	if snap.Type != types.MessageFrame || len(f.Orbits) != 6 || len(f.Orbits[5].Points) == 0 {
		t.Errorf("snapshot misses the new planet: %s, %d orbits", snap.Type, len(f.Orbits))
	}
}

func TestMalformedMessage(t *testing.T) {
	ts := startServer(t, nil)
	conn := ts.dial(t)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	msg := await(t, conn, func(m types.Message) bool { return m.Type == types.MessageError })
	var ep types.ErrorPayload
	json.Unmarshal(msg.Payload, &ep)
	if ep.Code != 12 {
		t.Errorf("expected malformed message error, got %+v", ep)
	}
}

func TestRateLimit(t *testing.T) {
	ts := startServer(t, func(cfg *utils.Config) {
		cfg.Server.CommandRate = 0.001
		cfg.Server.CommandBurst = 1
	})
	conn := ts.dial(t)

	send(t, conn, "a", controller.CmdPause, nil)
	if m := await(t, conn, reply("a")); m.Type != types.MessageAck {
		t.Fatalf("first command should pass, got %s", m.Type)
	}

	send(t, conn, "b", controller.CmdResume, nil)
	m := await(t, conn, reply("b"))
	var ep types.ErrorPayload
	json.Unmarshal(m.Payload, &ep)
	if m.Type != types.MessageError || ep.Code != 11 {
		t.Errorf("expected rate limit error, got %s %+v", m.Type, ep)
	}
}

func TestMaxClients(t *testing.T) {
	ts := startServer(t, func(cfg *utils.Config) {
		cfg.Server.MaxClients = 1
	})
	conn := ts.dial(t)
	await(t, conn, func(m types.Message) bool { return m.Type == types.MessageFrame })

	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("second client should be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %+v", resp)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := startServer(t, nil)
	conn := ts.dial(t)
	// wait for a stepped frame so the entity gauges are set
	await(t, conn, func(m types.Message) bool {
		var f types.Frame
		return m.Type == types.MessageFrame && json.Unmarshal(m.Payload, &f) == nil && f.Seq > 0
	})

	send(t, conn, "1", controller.CmdToggle, nil)
	await(t, conn, reply("1"))

	resp, err := http.Get(ts.http.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		"orrery_frames_total",
		`orrery_commands_total{command="toggle",result="ok"} 1`,
		`orrery_entities{kind="planet"} 5`,
		"orrery_clients 1",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output misses %q", want)
		}
	}
}

func TestPublishCadence(t *testing.T) {
	srv := New(utils.ServerConfig{FrameEvery: 3}, nil, nil)
	srv.hub.count.Store(1)

	plain := &types.Frame{Orbits: []types.OrbitView{{Planet: "p"}}}
	changed := &types.Frame{Orbits: []types.OrbitView{{Planet: "p"}}, Addressable: []types.EntryView{{ID: "sun"}}}

	srv.Publish(plain)   // 1: skipped
	srv.Publish(changed) // 2: sent, carries the entity list
	srv.Publish(plain)   // 3: sent on cadence
	srv.Publish(plain)   // 4: skipped

	if got := len(srv.hub.broadcast); got != 2 {
		t.Errorf("expected 2 queued frames, got %d", got)
	}
}

func TestPublishSkipsUnencodableFrame(t *testing.T) {
	srv := New(utils.ServerConfig{FrameEvery: 1}, nil, nil)
	srv.hub.count.Store(1)

	srv.Publish(&types.Frame{Seq: 1, Delta: math.NaN()})
	if got := len(srv.hub.broadcast); got != 0 {
		t.Fatalf("expected no queued frame, got %d", got)
	}

	srv.Publish(&types.Frame{Seq: 2, Delta: 0.016})
	if got := len(srv.hub.broadcast); got != 1 {
		t.Fatalf("expected 1 queued frame, got %d", got)
	}
	var msg types.Message
	if err := json.Unmarshal(<-srv.hub.broadcast, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != types.MessageFrame || string(msg.Payload) == "null" {
		t.Errorf("unexpected broadcast %s %s", msg.Type, msg.Payload)
	}
}

func TestReplyReportsUnencodablePayload(t *testing.T) {
	c := &Client{replies: make(chan []byte, 1), stopped: make(chan struct{})}
	c.reply(types.Message{Type: controller.CmdSnapshot, ID: "7"}, nil, &types.Frame{Delta: math.Inf(1)})

	var out types.Message
	if err := json.Unmarshal(<-c.replies, &out); err != nil {
		t.Fatal(err)
	}
	if out.Type != types.MessageError || out.ID != "7" {
		t.Fatalf("expected an error reply to 7, got %s %q", out.Type, out.ID)
	}
	var ep types.ErrorPayload
	if err := json.Unmarshal(out.Payload, &ep); err != nil {
		t.Fatal(err)
	}
	if ep.Code != ErrEncoding.ABCICode() {
		t.Errorf("expected code %d, got %+v", ErrEncoding.ABCICode(), ep)
	}
}
