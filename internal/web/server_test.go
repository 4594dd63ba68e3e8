package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/alarm-panel/internal/httpd"
	"github.com/sweeney/alarm-panel/internal/logic"
	"github.com/sweeney/alarm-panel/internal/metrics"
	"github.com/sweeney/alarm-panel/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker, *metrics.Metrics) {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tr := status.NewTracker(start, status.Config{
		ArmMode:     logic.ArmDeferred,
		TickMs:      10,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		ListenAddr:  ":80",
		AdminAddr:   ":8080",
	})
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	srv := New(":0", tr, reg)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr, m
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.Update(logic.StateActive, logic.Counts{Arms: 3, Confirms: 2, Disarms: 1})
	tr.SetMQTTConnected(true)

	resp, body := get(t, ts.URL+"/index.json")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: %q", ct)
	}

	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.Status.State != "ACTIVE" || !sj.Status.Active {
		t.Errorf("state: %s active=%v", sj.Status.State, sj.Status.Active)
	}
	if sj.Status.Counts.Arms != 3 || sj.Status.Counts.Confirms != 2 || sj.Status.Counts.Disarms != 1 {
		t.Errorf("counts: %+v", sj.Status.Counts)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("mqtt not connected")
	}
	if sj.Status.Config.ListenAddr != ":80" {
		t.Errorf("listen addr: %q", sj.Status.Config.ListenAddr)
	}
}

func TestHTMLEndpoints(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.Update(logic.StateArmPending, logic.Counts{Arms: 1})

	for _, path := range []string{"/", "/index.html"} {
		resp, body := get(t, ts.URL+path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status %d", path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: Content-Type %q", path, ct)
		}
		if !strings.Contains(body, `class="pending">ARM_PENDING<`) {
			t.Errorf("%s: state not rendered", path)
		}
		if !strings.Contains(body, "deferred") {
			t.Errorf("%s: arm mode not rendered", path)
		}
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, _ := get(t, ts.URL+"/alarm_on")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _, m := newTestServer(t)
	m.Accepted()
	m.Routed(httpd.RouteArm, nil)
	m.SetState(logic.StateIdle)

	resp, body := get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	for _, want := range []string{
		"alarm_panel_connections_accepted_total 1",
		`alarm_panel_requests_total{route="alarm_on"} 1`,
		`alarm_panel_state{state="IDLE"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{})
	srv := New(":0", tr, nil)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, _ := get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr, _ := newTestServer(t)

	_, body := get(t, ts.URL+"/index.json")
	if !strings.Contains(body, `"state": "IDLE"`) {
		t.Errorf("expected IDLE initially: %s", body)
	}

	tr.Update(logic.StateActive, logic.Counts{})
	_, body = get(t, ts.URL+"/index.json")
	if !strings.Contains(body, `"state": "ACTIVE"`) {
		t.Errorf("expected ACTIVE after update: %s", body)
	}
}

func TestServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := New(ln.Addr().String(), status.NewTracker(time.Now(), status.Config{}), nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, _ := get(t, "http://"+ln.Addr().String()+"/index.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Serve returned %v, want ErrServerClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}
