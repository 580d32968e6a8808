package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-chat-assistant/internal/weather"
)

func newTestProvider(t *testing.T, handler http.Handler) (*TomorrowIOProvider, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewTomorrowIOProvider(srv.Client(), "test-key", "UTC", 3)
	p.baseURL = srv.URL
	// Keep backoff short in tests.
	p.httpCfg.Backoff.InitialInterval = time.Millisecond
	return p, srv
}

// TestRetryBoundOnSustained429 verifies the initial attempt plus exactly 3
// retries, then failure.
func TestRetryBoundOnSustained429(t *testing.T) {
	var requests atomic.Int64

	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	loc := weather.LocationRef{Name: "São Paulo"}
	_, err := p.FetchTimeline(context.Background(), loc, weather.CurrentWindow(time.Now().UTC()))
	if err == nil {
		t.Fatal("expected an error after sustained 429s")
	}

	if got := requests.Load(); got != 4 {
		t.Fatalf("expected 4 requests (1 attempt + 3 retries), got %d", got)
	}
}

func TestNon429ErrorIsNotRetried(t *testing.T) {
	var requests atomic.Int64

	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	loc := weather.LocationRef{Name: "São Paulo"}
	_, err := p.FetchTimeline(context.Background(), loc, weather.CurrentWindow(time.Now().UTC()))
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("expected a single request for a non-429 error, got %d", got)
	}
}

func TestRetryAfterHeaderIsHonored(t *testing.T) {
	var requests atomic.Int64

	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(timelinePayload(time.Now().UTC()))
	}))

	start := time.Now()
	loc := weather.LocationRef{Name: "São Paulo"}
	_, err := p.FetchTimeline(context.Background(), loc, weather.CurrentWindow(time.Now().UTC()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if elapsed := time.Since(start); elapsed < time.Second {
		t.Fatalf("expected at least 1s delay from retry-after, got %s", elapsed)
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

// TestTimelineRequestShape asserts the POST body and location canonicalization.
func TestTimelineRequestShape(t *testing.T) {
	var body timelineRequest

	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("missing apikey parameter")
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(timelinePayload(time.Now().UTC()))
	}))

	loc := weather.LocationRef{Point: &weather.Point{Lat: -22.9255, Lon: -43.1784}}
	start := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	window := weather.Window{Start: start, End: start.AddDate(0, 0, 1), Fields: weather.DefaultFields}

	set, err := p.FetchTimeline(context.Background(), loc, window)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if body.Location != "-22.9255, -43.1784" {
		t.Errorf("unexpected location parameter: %q", body.Location)
	}
	if len(body.Timesteps) != 1 || body.Timesteps[0] != "1h" {
		t.Errorf("unexpected timesteps: %v", body.Timesteps)
	}
	if body.Units != "metric" {
		t.Errorf("unexpected units: %q", body.Units)
	}
	if body.StartTime != "2025-03-02T00:00:00Z" || body.EndTime != "2025-03-03T00:00:00Z" {
		t.Errorf("unexpected window: %s .. %s", body.StartTime, body.EndTime)
	}
	if len(body.Fields) != len(weather.DefaultFields) {
		t.Errorf("expected the full default field list, got %v", body.Fields)
	}

	if len(set.Intervals) != 1 {
		t.Fatalf("expected 1 interval, got %d", len(set.Intervals))
	}
	if set.Intervals[0].Values.Temperature != 24.6 {
		t.Errorf("unexpected temperature: %v", set.Intervals[0].Values.Temperature)
	}
}

func timelinePayload(ts time.Time) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"timelines": []map[string]any{
				{
					"intervals": []map[string]any{
						{
							"startTime": ts.Format(time.RFC3339),
							"values": map[string]any{
								"temperature":              24.6,
								"humidity":                 71.0,
								"windSpeed":                3.2,
								"precipitationProbability": 0.42,
								"rainIntensity":            1.3,
								"weatherCode":              4001,
							},
						},
					},
				},
			},
		},
	}
}
