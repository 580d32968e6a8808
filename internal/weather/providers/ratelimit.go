package providers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Published per-key limits for the provider's free plan. Percentages in the
// ledger are computed against these.
const (
	planDailyLimit     = 500
	planHourlyLimit    = 25
	planPerSecondLimit = 3
)

// Warn thresholds for remaining-quota counters.
const (
	warnDailyBelow     = 100
	warnHourlyBelow    = 5
	warnPerSecondBelow = 1
)

const (
	webAppHeader     = "x-ratelimit-remaining-web-app"
	planHeaderPrefix = "x-ratelimit-remaining-plan-"
)

// RateLimitLedger is the ephemeral quota view derived from one response's
// headers. It is recomputed per call and used only for logging; it never
// blocks a request.
type RateLimitLedger struct {
	Daily     float64
	Hourly    float64
	PerSecond float64

	HasDaily     bool
	HasHourly    bool
	HasPerSecond bool
}

// ParseRateLimitLedger derives a ledger from provider response headers.
// The web-app counter is normalized by /1000 to align its scale and feeds the
// daily slot. Plan counters are deduplicated by plan id keeping the minimum
// per id, then routed by the window token in the id (day/hour/second);
// untagged ids count against the hourly slot.
func ParseRateLimitLedger(h http.Header) RateLimitLedger {
	var ledger RateLimitLedger

	if v := h.Get(webAppHeader); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			ledger.Daily = n / 1000
			ledger.HasDaily = true
		}
	}

	plans := make(map[string]float64)
	for key, vals := range h {
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, planHeaderPrefix) || len(vals) == 0 {
			continue
		}
		id := strings.TrimPrefix(lower, planHeaderPrefix)
		for _, v := range vals {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			if existing, ok := plans[id]; !ok || n < existing {
				plans[id] = n
			}
		}
	}

	for id, n := range plans {
		switch {
		case strings.Contains(id, "day"):
			if !ledger.HasDaily || n < ledger.Daily {
				ledger.Daily = n
			}
			ledger.HasDaily = true
		case strings.Contains(id, "sec"):
			if !ledger.HasPerSecond || n < ledger.PerSecond {
				ledger.PerSecond = n
			}
			ledger.HasPerSecond = true
		default:
			if !ledger.HasHourly || n < ledger.Hourly {
				ledger.Hourly = n
			}
			ledger.HasHourly = true
		}
	}

	return ledger
}

// Warnings returns one message per counter that dropped below its threshold.
func (l RateLimitLedger) Warnings() []string {
	var warnings []string

	if l.HasDaily && l.Daily < warnDailyBelow {
		warnings = append(warnings, fmt.Sprintf(
			"daily quota low: %.0f remaining (%.1f%% of plan)",
			l.Daily, l.Daily/planDailyLimit*100))
	}
	if l.HasHourly && l.Hourly < warnHourlyBelow {
		warnings = append(warnings, fmt.Sprintf(
			"hourly quota low: %.0f remaining (%.1f%% of plan)",
			l.Hourly, l.Hourly/planHourlyLimit*100))
	}
	if l.HasPerSecond && l.PerSecond < warnPerSecondBelow {
		warnings = append(warnings, fmt.Sprintf(
			"per-second quota low: %.0f remaining (%.1f%% of plan)",
			l.PerSecond, l.PerSecond/planPerSecondLimit*100))
	}

	return warnings
}
