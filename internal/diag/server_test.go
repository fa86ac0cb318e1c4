package diag

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/petems/gamechat/internal/voice"
)

type stubStats struct {
	stats voice.Stats
}

func (s *stubStats) Stats() voice.Stats { return s.stats }

func newTestServer(t *testing.T, src StatsSource, gatherer prometheus.Gatherer) *httptest.Server {
	t.Helper()
	s := New("127.0.0.1:0", src, gatherer, zerolog.Nop())
	ts := httptest.NewServer(s.router())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, &stubStats{}, prometheus.NewRegistry())

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	var health map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("got status %v, want ok", health["status"])
	}
	if health["uptime"] == "" {
		t.Error("expected non-empty uptime")
	}
}

func TestStatsEndpoint(t *testing.T) {
	src := &stubStats{stats: voice.Stats{
		Running:    true,
		LocalAddr:  "127.0.0.1:4000",
		FramesSent: 42,
		RecvErrors: 7,
	}}
	ts := newTestServer(t, src, prometheus.NewRegistry())

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("get /stats: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	var stats voice.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !stats.Running || stats.FramesSent != 42 || stats.RecvErrors != 7 {
		t.Errorf("got %+v, want source stats", stats)
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := voice.NewMetrics(reg)
	m.FramesSent.Add(3)

	ts := newTestServer(t, &stubStats{}, reg)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d, want 200", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "gamechat_voice_frames_sent_total 3") {
		t.Errorf("metrics output missing engine counter:\n%s", body)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	s := New("127.0.0.1:0", &stubStats{}, prometheus.NewRegistry(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("serve did not stop after context cancel")
	}
}
