package resolve

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/i474232898/weather-chat-assistant/internal/completion"
)

// scriptedCompletions returns a fixed answer for every prompt.
type scriptedCompletions struct {
	answer string
	err    error
}

func (f *scriptedCompletions) Complete(ctx context.Context, messages []completion.Message) (string, error) {
	return f.answer, f.err
}

var testNow = time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

func newTemporal(answer string, err error) *TemporalResolver {
	r := NewTemporalResolver(&scriptedCompletions{answer: answer, err: err})
	r.now = func() time.Time { return testNow }
	return r
}

func TestTomorrowAfternoon(t *testing.T) {
	r := newTemporal(`{"date": "2025-03-02", "time": "afternoon", "explanation": "tomorrow afternoon"}`, nil)

	res := r.Resolve(context.Background(), "will it rain in São Paulo tomorrow afternoon", nil)
	if res.Date != "2025-03-02" {
		t.Errorf("unexpected date: %q", res.Date)
	}
	if res.TimeOfDay != TimeAfternoon {
		t.Errorf("unexpected time of day: %q", res.TimeOfDay)
	}
	if !res.IsFuture {
		t.Error("expected IsFuture")
	}
	if !res.Target.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected target: %v", res.Target)
	}
}

func TestFencedJSONIsParsed(t *testing.T) {
	r := newTemporal("```json\n{\"date\": \"2025-03-03\", \"time\": \"morning\", \"explanation\": \"x\"}\n```", nil)

	res := r.Resolve(context.Background(), "monday morning?", nil)
	if res.Date != "2025-03-03" || res.TimeOfDay != TimeMorning {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestGarbageAnswerDefaultsToCurrent(t *testing.T) {
	r := newTemporal("I think the user means next week, probably.", nil)

	res := r.Resolve(context.Background(), "next week?", nil)
	if res.Date != "current" || res.TimeOfDay != TimeCurrent || res.IsFuture {
		t.Errorf("expected the safe default, got %+v", res)
	}
}

func TestGatewayFailureDefaultsToCurrent(t *testing.T) {
	r := newTemporal("", errors.New("service down"))

	res := r.Resolve(context.Background(), "tomorrow?", nil)
	if res.Date != "current" || res.TimeOfDay != TimeCurrent {
		t.Errorf("expected the safe default, got %+v", res)
	}
}

func TestPastDateIsTreatedAsCurrent(t *testing.T) {
	r := newTemporal(`{"date": "2025-02-27", "time": "current", "explanation": "x"}`, nil)

	res := r.Resolve(context.Background(), "how was it two days ago?", nil)
	if res.Date != "current" || res.IsFuture {
		t.Errorf("expected past dates to degrade to current, got %+v", res)
	}
}

func TestFarFutureDateIsClamped(t *testing.T) {
	r := newTemporal(`{"date": "2025-03-15", "time": "current", "explanation": "x"}`, nil)

	res := r.Resolve(context.Background(), "in two weeks?", nil)
	if res.Date != "2025-03-06" {
		t.Errorf("expected clamp to +5 days, got %q", res.Date)
	}
	if !res.IsFuture {
		t.Error("expected IsFuture after clamping")
	}
}

// TestHorizonInvariant checks date ≤ now+5d and date ≥ now for a spread of
// extractor answers.
func TestHorizonInvariant(t *testing.T) {
	today := time.Date(testNow.Year(), testNow.Month(), testNow.Day(), 0, 0, 0, 0, time.UTC)
	horizon := today.AddDate(0, 0, 5)

	for _, date := range []string{
		"2020-01-01", "2025-02-28", "2025-03-01", "2025-03-04", "2025-03-06", "2025-12-31", "not-a-date",
	} {
		r := newTemporal(fmt.Sprintf(`{"date": %q, "time": "current", "explanation": "x"}`, date), nil)
		res := r.Resolve(context.Background(), "when?", nil)
		if !res.IsFuture {
			continue
		}
		if res.Target.Before(today) {
			t.Errorf("date %s: target %v is in the past", date, res.Target)
		}
		if res.Target.After(horizon) {
			t.Errorf("date %s: target %v exceeds the horizon", date, res.Target)
		}
	}
}

func TestInvalidTimeOfDayDefaults(t *testing.T) {
	r := newTemporal(`{"date": "current", "time": "midnightish", "explanation": "x"}`, nil)

	res := r.Resolve(context.Background(), "now?", nil)
	if res.TimeOfDay != TimeCurrent {
		t.Errorf("unexpected time of day: %q", res.TimeOfDay)
	}
}

func TestAnchorHours(t *testing.T) {
	cases := map[TimeOfDay]int{
		TimeMorning:   9,
		TimeAfternoon: 15,
		TimeEvening:   18,
		TimeNight:     21,
	}
	for tod, want := range cases {
		got, ok := AnchorHour(tod)
		if !ok || got != want {
			t.Errorf("AnchorHour(%s) = %d,%v, want %d", tod, got, ok, want)
		}
	}
	if _, ok := AnchorHour(TimeCurrent); ok {
		t.Error("TimeCurrent must not have an anchor hour")
	}
}

func TestBucketForHour(t *testing.T) {
	cases := map[int]TimeOfDay{
		4:  TimeNight,
		5:  TimeMorning,
		11: TimeMorning,
		12: TimeAfternoon,
		15: TimeAfternoon,
		17: TimeAfternoon,
		18: TimeEvening,
		21: TimeEvening,
		22: TimeNight,
		23: TimeNight,
		0:  TimeNight,
	}
	for hour, want := range cases {
		if got := BucketForHour(hour); got != want {
			t.Errorf("BucketForHour(%d) = %s, want %s", hour, got, want)
		}
	}
}
