package monitoring

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"influence-tracker/internal/models"
)

func TestMonitorHealth(t *testing.T) {
	m := NewMonitor()

	if !m.IsHealthy() {
		t.Error("monitor with no runs should be healthy")
	}
	if got := m.GetStatusSummary(); got != "No runs yet" {
		t.Errorf("GetStatusSummary() = %q", got)
	}

	m.RecordCriticalFailure(errors.New("store unwritable"), time.Second)
	if m.IsHealthy() {
		t.Error("monitor should be unhealthy after a critical failure")
	}

	m.RecordPartialFailure(errors.New("smtp down"), time.Second)
	if m.IsHealthy() {
		t.Error("a partial failure should not restore health")
	}

	m.RecordSuccess("added 3 new posts", time.Second)
	if !m.IsHealthy() {
		t.Error("monitor should be healthy after a success")
	}
	if got := m.GetStatusSummary(); !strings.Contains(got, "added 3 new posts") {
		t.Errorf("GetStatusSummary() = %q, want run summary", got)
	}
}

func TestHealthEndpoints(t *testing.T) {
	m := NewMonitor()
	srv := httptest.NewServer(NewHealthServer(m, "").Handler())
	defer srv.Close()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		return resp.StatusCode, string(body)
	}

	if code, _ := get("/health"); code != http.StatusOK {
		t.Errorf("/health = %d, want 200", code)
	}
	if code, _ := get("/brief"); code != http.StatusNotFound {
		t.Errorf("/brief before any run = %d, want 404", code)
	}

	m.RecordCriticalFailure(errors.New("boom"), time.Second)
	if code, _ := get("/health"); code != http.StatusServiceUnavailable {
		t.Errorf("/health after failure = %d, want 503", code)
	}
	if code, body := get("/status"); code != http.StatusOK || !strings.Contains(body, "boom") {
		t.Errorf("/status = %d %q, want 200 with failure summary", code, body)
	}
	if _, body := get("/status"); strings.Contains(body, "Next cycle") {
		t.Errorf("/status without a schedule should omit the next cycle, got %q", body)
	}

	m.RecordNextRun(time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC))
	if _, body := get("/status"); !strings.Contains(body, "Next cycle: Jun 11 09:00") {
		t.Errorf("/status = %q, want next cycle", body)
	}

	m.RecordBrief(&models.BriefReport{
		WindowHours: 48,
		PostCount:   2,
		Brief:       "Analysis of 2 recent posts reveals ...",
		TopTrends:   []models.TrendTally{{Trend: "ai boom", Count: 2}},
		Posts:       []models.Post{{PostID: "hidden"}},
	})

	resp, err := http.Get(srv.URL + "/brief")
	if err != nil {
		t.Fatalf("GET /brief failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/brief = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding /brief: %v", err)
	}
	if body["post_count"] != float64(2) {
		t.Errorf("post_count = %v, want 2", body["post_count"])
	}
	if _, ok := body["Posts"]; ok {
		t.Error("posts should not be exposed on /brief")
	}
}
