package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/i474232898/weather-chat-assistant/internal/completion"
)

// TimeOfDay is either "current" or one of the four fixed day buckets.
type TimeOfDay string

const (
	TimeCurrent   TimeOfDay = "current"
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// maxForecastDays is the supported forecast horizon.
const maxForecastDays = 5

// TemporalResult is the resolved target date and time of day for a query.
type TemporalResult struct {
	// Date is "current" or an ISO calendar date.
	Date string
	// TimeOfDay is "current" or a day bucket.
	TimeOfDay TimeOfDay
	// Explanation is the extractor's one-line reasoning, kept for audit logs.
	Explanation string
	// IsFuture marks a query about a specific (possibly clamped) future day.
	IsFuture bool
	// Target is the resolved day at midnight UTC; only set when IsFuture.
	Target time.Time
}

// TemporalResolver determines which date and time of day a query refers to.
type TemporalResolver struct {
	completions completion.Gateway
	now         func() time.Time
}

func NewTemporalResolver(completions completion.Gateway) *TemporalResolver {
	return &TemporalResolver{
		completions: completions,
		now:         time.Now,
	}
}

// dateTimeAnswer is the strict JSON shape the extractor must return.
type dateTimeAnswer struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Explanation string `json:"explanation"`
}

// Resolve extracts the target date/time from the turn history plus the
// current text. Extraction and parse failures never propagate; they degrade
// to the safe default of current date and current time.
func (r *TemporalResolver) Resolve(ctx context.Context, text string, history []HistoryTurn) TemporalResult {
	lines := make([]string, 0, len(history)+1)
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Message))
	}
	lines = append(lines, fmt.Sprintf("user: %s", text))

	now := r.now().UTC()

	raw, err := r.completions.Complete(ctx, completion.DateTimePrompt(lines, now))
	if err != nil {
		log.Printf("resolve: date/time extraction failed: %v", err)
		return currentDefault()
	}

	var answer dateTimeAnswer
	if err := json.Unmarshal([]byte(stripFences(raw)), &answer); err != nil {
		log.Printf("resolve: date/time answer was not valid JSON: %v", err)
		return currentDefault()
	}

	result := TemporalResult{
		Date:        "current",
		TimeOfDay:   parseTimeOfDay(answer.Time),
		Explanation: answer.Explanation,
	}

	parsed, err := time.ParseInLocation("2006-01-02", answer.Date, time.UTC)
	if err != nil {
		// Anything that is not a YYYY-MM-DD date (including "current")
		// means current conditions.
		return result
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if parsed.Before(today) {
		// No negative-offset forecasts.
		return result
	}

	horizon := today.AddDate(0, 0, maxForecastDays)
	if parsed.After(horizon) {
		parsed = horizon
	}

	result.IsFuture = true
	result.Target = parsed
	result.Date = parsed.Format("2006-01-02")
	return result
}

func currentDefault() TemporalResult {
	return TemporalResult{Date: "current", TimeOfDay: TimeCurrent}
}

func parseTimeOfDay(s string) TimeOfDay {
	switch TimeOfDay(strings.ToLower(strings.TrimSpace(s))) {
	case TimeMorning:
		return TimeMorning
	case TimeAfternoon:
		return TimeAfternoon
	case TimeEvening:
		return TimeEvening
	case TimeNight:
		return TimeNight
	default:
		return TimeCurrent
	}
}

// stripFences removes markdown code-block markers the completion service
// tends to wrap JSON answers in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// AnchorHour maps a non-current time of day to its fixed hour anchor.
func AnchorHour(t TimeOfDay) (int, bool) {
	switch t {
	case TimeMorning:
		return 9, true
	case TimeAfternoon:
		return 15, true
	case TimeEvening:
		return 18, true
	case TimeNight:
		return 21, true
	default:
		return 0, false
	}
}

// BucketForHour buckets an hour of day: [05,12) morning, [12,18) afternoon,
// [18,22) evening, else night.
func BucketForHour(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 18:
		return TimeAfternoon
	case hour >= 18 && hour < 22:
		return TimeEvening
	default:
		return TimeNight
	}
}
