package hue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dokzlo13/gsilight/internal/color"
	"github.com/dokzlo13/gsilight/internal/effects"
)

type fakeBridge struct {
	mu     sync.Mutex
	token  string
	down   bool
	bodies map[string][]map[string]any
}

func newFakeBridge(t *testing.T, token string) (*fakeBridge, *httptest.Server) {
	t.Helper()
	b := &fakeBridge{token: token, bodies: make(map[string][]map[string]any)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/{token}/lights", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorize(w, r) {
			return
		}
		io.WriteString(w, `{
			"1": {"name": "Desk", "type": "Extended color light", "state": {"on": true, "reachable": true}},
			"2": {"name": "Shelf", "type": "Color light", "state": {"on": false, "reachable": true}},
			"10": {"name": "Hall", "type": "Dimmable light", "state": {"on": false, "reachable": false}}
		}`)
	})
	mux.HandleFunc("PUT /api/{token}/lights/{id}/state", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorize(w, r) {
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.bodies[r.PathValue("id")] = append(b.bodies[r.PathValue("id")], body)
		b.mu.Unlock()
		io.WriteString(w, `[{"success": {"/lights/`+r.PathValue("id")+`/state/on": true}}]`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBridge) authorize(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	down := b.down
	b.mu.Unlock()
	if down {
		http.Error(w, "bridge rebooting", http.StatusServiceUnavailable)
		return false
	}
	if r.PathValue("token") != b.token {
		io.WriteString(w, `[{"error": {"type": 1, "address": "/lights", "description": "unauthorized user"}}]`)
		return false
	}
	return true
}

func (b *fakeBridge) setDown(down bool) {
	b.mu.Lock()
	b.down = down
	b.mu.Unlock()
}

func (b *fakeBridge) received(id string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[id]
}

func address(srv *httptest.Server) string {
	return strings.TrimPrefix(srv.URL, "http://")
}

func TestDriver_Connect(t *testing.T) {
	_, srv := newFakeBridge(t, "key")

	tests := []struct {
		name   string
		filter []string
		want   []string
	}{
		{"all_lights", nil, []string{"1", "2", "10"}},
		{"filtered", []string{"10", "2"}, []string{"2", "10"}},
		{"unknown_filtered_light", []string{"7"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDriver(NewClient(address(srv), "key", time.Second), tt.filter, 100)
			if d.IsConnected() {
				t.Fatal("driver connected before Connect")
			}
			if err := d.Connect(context.Background()); err != nil {
				t.Fatalf("Connect() error = %v", err)
			}
			if !d.IsConnected() {
				t.Error("IsConnected() = false after Connect")
			}
			got := d.ListDevices()
			if len(got) != len(tt.want) {
				t.Fatalf("ListDevices() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ListDevices() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDriver_ConnectUnauthorized(t *testing.T) {
	_, srv := newFakeBridge(t, "key")

	d := NewDriver(NewClient(address(srv), "wrong", time.Second), nil, 100)
	err := d.Connect(context.Background())
	if !errors.Is(err, ErrNotPaired) {
		t.Fatalf("Connect() error = %v, want ErrNotPaired", err)
	}
	if d.IsConnected() {
		t.Error("driver connected with a rejected key")
	}

	d = NewDriver(NewClient(address(srv), "", time.Second), nil, 100)
	if err := d.Connect(context.Background()); !errors.Is(err, ErrNotPaired) {
		t.Errorf("Connect() without key error = %v, want ErrNotPaired", err)
	}
}

func TestDriver_SetState(t *testing.T) {
	bridge, srv := newFakeBridge(t, "key")
	d := NewDriver(NewClient(address(srv), "key", time.Second), []string{"1", "2"}, 100)
	if err := d.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	d.SetState(context.Background(), d.ListDevices(), effects.ColorState(color.Red, 1.0, 0))

	for _, id := range []string{"1", "2"} {
		bodies := bridge.received(id)
		if len(bodies) != 1 {
			t.Fatalf("light %s received %d updates, want 1", id, len(bodies))
		}
		body := bodies[0]
		if body["on"] != true {
			t.Errorf("light %s on = %v", id, body["on"])
		}
		if body["bri"] != float64(254) {
			t.Errorf("light %s bri = %v, want 254", id, body["bri"])
		}
		tt, ok := body["transitiontime"]
		if !ok || tt != float64(0) {
			t.Errorf("light %s transitiontime = %v (present %v), want explicit 0", id, tt, ok)
		}
		xy, ok := body["xy"].([]any)
		if !ok || len(xy) != 2 {
			t.Errorf("light %s xy = %v", id, body["xy"])
		}
	}
	if got := bridge.received("10"); len(got) != 0 {
		t.Errorf("unselected light received %d updates", len(got))
	}
}

func TestDriver_SetStateOff(t *testing.T) {
	bridge, srv := newFakeBridge(t, "key")
	d := NewDriver(NewClient(address(srv), "key", time.Second), []string{"1"}, 100)
	if err := d.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	d.SetState(context.Background(), []string{"1"}, effects.OffState(4))

	body := bridge.received("1")[0]
	if body["on"] != false || body["transitiontime"] != float64(4) {
		t.Errorf("off body = %v", body)
	}
	if _, ok := body["bri"]; ok {
		t.Error("off body should not carry bri")
	}
	if _, ok := body["xy"]; ok {
		t.Error("off body should not carry xy")
	}
}

func TestDriver_LosesConnection(t *testing.T) {
	_, srv := newFakeBridge(t, "key")
	d := NewDriver(NewClient(address(srv), "key", time.Second), nil, 100)
	if err := d.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	srv.Close()
	d.SetState(context.Background(), d.ListDevices(), effects.OffState(0))

	if d.IsConnected() {
		t.Error("IsConnected() = true after every light failed")
	}
}

func TestDriver_APIErrorKeepsConnection(t *testing.T) {
	_, srv := newFakeBridge(t, "key")
	d := NewDriver(NewClient(address(srv), "key", time.Second), nil, 100)
	if err := d.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A rejected key is an API error, not a transport failure.
	d.client = NewClient(address(srv), "stale", time.Second)
	d.SetState(context.Background(), d.ListDevices(), effects.OffState(0))

	if !d.IsConnected() {
		t.Error("API errors should not mark the bridge unreachable")
	}
}

func TestDriver_RunReconnects(t *testing.T) {
	bridge, srv := newFakeBridge(t, "key")
	bridge.setDown(true)

	d := NewDriver(NewClient(address(srv), "key", time.Second), nil, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, RetryConfig{MinBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Multiplier: 2})
	}()

	time.Sleep(20 * time.Millisecond)
	if d.IsConnected() {
		t.Fatal("connected while bridge is down")
	}

	bridge.setDown(false)
	waitFor(t, d.IsConnected)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestDriver_RunStopsWhenUnpaired(t *testing.T) {
	_, srv := newFakeBridge(t, "key")
	d := NewDriver(NewClient(address(srv), "wrong", time.Second), nil, 100)

	err := d.Run(context.Background(), RetryConfig{MinBackoff: time.Millisecond, MaxBackoff: time.Millisecond, Multiplier: 1})
	if !errors.Is(err, ErrNotPaired) {
		t.Errorf("Run() error = %v, want ErrNotPaired", err)
	}
}

func TestBrightness(t *testing.T) {
	tests := []struct {
		level float64
		want  uint8
	}{
		{0, 0},
		{0.3, 76},
		{0.5, 127},
		{0.7, 178},
		{1.0, 254},
		{1.5, 254},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := Brightness(tt.level); got != tt.want {
			t.Errorf("Brightness(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
