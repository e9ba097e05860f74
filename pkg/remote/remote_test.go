package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/vtree/pkg/runtime"
	"github.com/vango-dev/vtree/pkg/scope"
	"github.com/vango-dev/vtree/pkg/vdom"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	hub *Hub
	rt  *runtime.Runtime
	srv *httptest.Server
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	hub := NewHub(append([]Option{WithLogger(quiet)}, opts...)...)
	rt := runtime.New(hub, runtime.WithLogger(quiet), runtime.WithTickInterval(time.Millisecond))
	hub.Attach(rt)

	counter := scope.Define("Counter", func(c *scope.Ctx, _ any) *vdom.Node {
		count := scope.UseState(c, 0)
		return vdom.Button(
			vdom.OnClick(func(*vdom.Event) { count.Update(func(n int) int { return n + 1 }) }),
			vdom.Textf("%d", count.Get()),
		)
	})
	if err := rt.Mount(context.Background(), counter.Node(nil)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go rt.Run(ctx)
	srv := httptest.NewServer(hub.Router())
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
		cancel()
	})
	return &fixture{hub: hub, rt: rt, srv: srv}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var out Outbound
	if err := json.Unmarshal(msg, &out); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
	return out
}

func buttonHandle(t *testing.T, b *vdom.Batch) vdom.Handle {
	t.Helper()
	for _, m := range b.Mutations {
		if m.Op == vdom.OpCreateElement && m.Tag == "button" {
			return m.Handle
		}
	}
	t.Fatalf("no button in %s", b)
	return vdom.NoHandle
}

func TestSnapshotOnConnect(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)

	first := readFrame(t, conn)
	if first.Type != FrameBatch || first.Batch == nil || !first.Batch.Reset {
		t.Fatalf("first frame = %+v, want reset batch", first)
	}
	if first.Batch.Seq != 1 {
		t.Errorf("snapshot seq = %d, want 1", first.Batch.Seq)
	}
	if first.Batch.Count(vdom.OpSetListener) != 1 {
		t.Errorf("snapshot = %s", first.Batch)
	}
}

func TestEventRoundTrip(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	btn := buttonHandle(t, readFrame(t, conn).Batch)

	err := conn.WriteJSON(Inbound{Type: FrameEvent, Event: "click", Target: btn})
	if err != nil {
		t.Fatal(err)
	}
	next := readFrame(t, conn)
	if next.Batch == nil || next.Batch.Seq != 2 || next.Batch.Reset {
		t.Fatalf("frame = %+v, want batch 2", next)
	}
	muts := next.Batch.Mutations
	if len(muts) != 1 || muts[0].Op != vdom.OpSetText || muts[0].Value != "1" {
		t.Errorf("mutations = %v", muts)
	}

	if html, stale := f.hub.TreeHTML(); stale || html != "<button>1</button>" {
		t.Errorf("TreeHTML() = %q, stale=%v", html, stale)
	}
}

func TestBroadcast(t *testing.T) {
	f := newFixture(t)
	a := f.dial(t)
	b := f.dial(t)
	btn := buttonHandle(t, readFrame(t, a).Batch)
	readFrame(t, b)

	a.WriteJSON(Inbound{Type: FrameEvent, Event: "click", Target: btn})
	for _, conn := range []*websocket.Conn{a, b} {
		if got := readFrame(t, conn); got.Batch == nil || got.Batch.Seq != 2 {
			t.Errorf("frame = %+v, want batch 2", got)
		}
	}
	if n := f.hub.Clients(); n != 2 {
		t.Errorf("Clients() = %d, want 2", n)
	}
}

func TestResyncAndBadFrames(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t)
	readFrame(t, conn)

	conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	if got := readFrame(t, conn); got.Type != FrameError || got.Error != "invalid frame" {
		t.Errorf("frame = %+v, want invalid frame error", got)
	}

	conn.WriteJSON(Inbound{Type: "bogus"})
	if got := readFrame(t, conn); got.Type != FrameError {
		t.Errorf("frame = %+v, want error", got)
	}

	conn.WriteJSON(Inbound{Type: FrameResync})
	got := readFrame(t, conn)
	if got.Batch == nil || !got.Batch.Reset || len(got.Batch.Mutations) == 0 {
		t.Errorf("resync frame = %+v", got)
	}
}

func TestHTTPRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, WithGatherer(reg), WithRegisterer(reg))

	resp, err := http.Get(f.srv.URL + "/debug/tree")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "<button>0</button>" {
		t.Errorf("/debug/tree = %q", body)
	}

	resp, err = http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var health map[string]any
	json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health["status"] != "ok" {
		t.Errorf("/healthz = %v", health)
	}

	resp, err = http.Get(f.srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "vtree_remote_clients 0") {
		t.Errorf("/metrics missing client gauge:\n%s", body)
	}
}

func TestApplyWithoutClients(t *testing.T) {
	hub := NewHub(WithLogger(quiet))
	batch := vdom.Batch{Seq: 1, Mutations: []vdom.Mutation{
		{Op: vdom.OpCreateText, Handle: 2, Value: "hi"},
		{Op: vdom.OpAppendChild, Handle: 2, Parent: vdom.RootHandle},
	}}
	if err := hub.Apply(context.Background(), batch); err != nil {
		t.Fatal(err)
	}
	if html, _ := hub.TreeHTML(); html != "hi" {
		t.Errorf("TreeHTML() = %q", html)
	}

	// a broken batch marks the mirror stale until a reset arrives
	hub.Apply(context.Background(), vdom.Batch{Seq: 2, Mutations: []vdom.Mutation{{Op: vdom.OpSetText, Handle: 99}}})
	if _, stale := hub.TreeHTML(); !stale {
		t.Error("mirror should be stale")
	}
	hub.Apply(context.Background(), vdom.Batch{Seq: 3, Reset: true})
	if html, stale := hub.TreeHTML(); stale || html != "" {
		t.Errorf("after reset TreeHTML() = %q, stale=%v", html, stale)
	}
}

func TestSlowClientDropped(t *testing.T) {
	reg := prometheus.NewRegistry()
	hub := NewHub(WithLogger(quiet), WithRegisterer(reg))
	c := &client{hub: hub, send: make(chan encoded, 1), done: make(chan struct{})}
	hub.register(c)

	hub.Apply(context.Background(), vdom.Batch{Seq: 1})
	hub.Apply(context.Background(), vdom.Batch{Seq: 2})

	if hub.Clients() != 0 {
		t.Errorf("Clients() = %d, want 0", hub.Clients())
	}
	select {
	case <-c.done:
	default:
		t.Error("slow client not shut down")
	}
	if got := testutil.ToFloat64(hub.dropped); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
}
