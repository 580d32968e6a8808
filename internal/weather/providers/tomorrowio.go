package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-chat-assistant/internal/weather"
	"github.com/sony/gobreaker"
)

// TomorrowIOProvider implements the weather.TimelineProvider interface for
// the Tomorrow.io v4 timelines endpoint.
type TomorrowIOProvider struct {
	name     string
	apiKey   string
	baseURL  string
	timezone string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewTomorrowIOProvider(client *http.Client, apiKey, timezone string, maxRetries int) *TomorrowIOProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tomorrowio",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if timezone == "" {
		timezone = "UTC"
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &TomorrowIOProvider{
		name:     "tomorrowio",
		apiKey:   apiKey,
		baseURL:  "https://api.tomorrow.io/v4/timelines",
		timezone: timezone,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 1 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *TomorrowIOProvider) Name() string {
	return p.name
}

// timelineRequest is the POST body for the timelines endpoint.
type timelineRequest struct {
	Location  string   `json:"location"`
	Fields    []string `json:"fields"`
	Timesteps []string `json:"timesteps"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Units     string   `json:"units"`
	Timezone  string   `json:"timezone"`
}

// FetchTimeline posts a single 1h-step timeline request for the window and
// decodes the interval list. Rate-limit headers are parsed into the ledger
// after every successful call; that accounting only logs, it never blocks.
func (p *TomorrowIOProvider) FetchTimeline(ctx context.Context, loc weather.LocationRef, w weather.Window) (weather.IntervalSet, error) {
	if p.apiKey == "" {
		return weather.IntervalSet{}, fmt.Errorf("tomorrow.io api key is not configured")
	}

	body := timelineRequest{
		Location:  loc.Key(),
		Fields:    w.Fields,
		Timesteps: []string{"1h"},
		StartTime: w.Start.UTC().Format(time.RFC3339),
		EndTime:   w.End.UTC().Format(time.RFC3339),
		Units:     "metric",
		Timezone:  p.timezone,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return weather.IntervalSet{}, err
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("apikey", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.IntervalSet{}, err
	}
	defer resp.Body.Close()

	ledger := ParseRateLimitLedger(resp.Header)
	for _, warning := range ledger.Warnings() {
		log.Printf("tomorrowio: %s", warning)
	}

	var decoded struct {
		Data struct {
			Timelines []struct {
				Intervals []weather.Interval `json:"intervals"`
			} `json:"timelines"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return weather.IntervalSet{}, err
	}

	var intervals []weather.Interval
	for _, tl := range decoded.Data.Timelines {
		intervals = append(intervals, tl.Intervals...)
	}

	return weather.IntervalSet{Location: loc, Intervals: intervals}, nil
}
