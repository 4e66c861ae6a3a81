package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/faqbot/faqbot/internal/faq"
	"github.com/faqbot/faqbot/internal/report"
)

type stubReportStore struct{}

func (stubReportStore) Insert(context.Context, *report.Report) error { return nil }

func (stubReportStore) List(context.Context, report.Kind, int) ([]*report.Report, error) {
	return nil, nil
}

func newTestGateway(t *testing.T, cfg Config) *Gateway {
	t.Helper()

	cfg.defaults()

	dir := t.TempDir()
	store := faq.NewStore(filepath.Join(dir, "faq.json"), faq.StoreOptions{CacheTTL: -1})
	if err := store.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	settings := report.NewSettings(filepath.Join(dir, "report_settings.json"))
	if err := settings.Load(); err != nil {
		t.Fatalf("settings Load: %v", err)
	}

	return &Gateway{
		config:    cfg,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		startedAt: time.Now(),
		store:     store,
		reports:   report.NewService(stubReportStore{}, settings, report.NewGate(0)),
	}
}

func TestHealthOK(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{})
	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("Status = %q, want ok", body.Status)
	}
}

func TestHealthDegradedWithoutStore(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{})
	g.store = nil
	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestFAQFileServesStore(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{})
	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/faq.json")
	if err != nil {
		t.Fatalf("GET /faq.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("body is not a JSON array: %v", err)
	}
}

func TestMetricsExposed(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{})
	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "# HELP") {
		t.Error("metrics output missing exposition text")
	}
}

func TestStatusRequiresAuth(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{Auth: AuthConfig{BearerToken: "secret-token"}})
	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no auth", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer secret-token", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/status", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("GET /status: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestStatusBasicAuth(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{Auth: AuthConfig{BasicUser: "admin", BasicPass: "pw"}})
	g.startedAt = time.Now().Add(-90 * time.Second)
	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/status", nil)
	req.SetBasicAuth("admin", "pw")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Reports == nil {
		t.Fatal("Reports missing from status response")
	}
	if !body.Reports.BugReportsAllowed {
		t.Error("BugReportsAllowed = false, want true by default")
	}
	if body.Uptime < 90 || body.Uptime > 120 {
		t.Errorf("Uptime = %d, want seconds in [90, 120]", body.Uptime)
	}
}

func TestStatusNotMountedWithoutAuth(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t, Config{})
	srv := httptest.NewServer(g.buildRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.defaults()

	if cfg.Bind != "127.0.0.1:8080" {
		t.Errorf("Bind = %q", cfg.Bind)
	}
	if cfg.ReadTimeout != 10*time.Second || cfg.WriteTimeout != 30*time.Second {
		t.Errorf("timeouts = %v/%v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.Auth.IsConfigured() {
		t.Error("empty AuthConfig reported as configured")
	}
}
