package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/i474232898/weather-chat-assistant/internal/completion"
	"github.com/i474232898/weather-chat-assistant/internal/geo"
	"github.com/i474232898/weather-chat-assistant/internal/resolve"
	"github.com/i474232898/weather-chat-assistant/internal/session"
	"github.com/i474232898/weather-chat-assistant/internal/weather"
)

// Result is the normalized weather answer attached to a conversation turn.
type Result struct {
	SessionID string `json:"sessionId"`

	Location           string         `json:"location"`
	LocationSource     resolve.Source `json:"locationSource"`
	LocationConfidence float64        `json:"locationConfidence"`

	Date      string `json:"date"`
	TimeOfDay string `json:"timeOfDay"`
	IsFuture  bool   `json:"isFuture"`

	Temperature   int     `json:"temperature"`
	High          int     `json:"high"`
	Low           int     `json:"low"`
	Condition     string  `json:"condition"`
	Precipitation string  `json:"precipitation"`
	Humidity      int     `json:"humidity"`
	WindSpeed     float64 `json:"windSpeed"`
	WeatherCode   int     `json:"weatherCode"`

	Narrative string `json:"narrative"`
}

// Orchestrator composes the location resolver, temporal resolver and weather
// gateway into the flexible query pipeline, and attaches the outcome to the
// conversation session.
type Orchestrator struct {
	completions completion.Gateway
	locations   *resolve.LocationResolver
	temporal    *resolve.TemporalResolver
	weather     *weather.Gateway
	sessions    session.Store
	geocoder    *geo.Geocoder
	now         func() time.Time
}

func NewOrchestrator(
	completions completion.Gateway,
	locations *resolve.LocationResolver,
	temporal *resolve.TemporalResolver,
	gateway *weather.Gateway,
	sessions session.Store,
	geocoder *geo.Geocoder,
) *Orchestrator {
	return &Orchestrator{
		completions: completions,
		locations:   locations,
		temporal:    temporal,
		weather:     gateway,
		sessions:    sessions,
		geocoder:    geocoder,
		now:         time.Now,
	}
}

// ResolveFlexibleWeather runs the full pipeline for one user message:
// resolve place and moment, fetch provider data, pick the matching interval,
// synthesize a narrative and record both turns on the session.
func (o *Orchestrator) ResolveFlexibleWeather(ctx context.Context, text, userID, sessionID string) (*Result, error) {
	sess, err := o.findSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	history := make([]resolve.HistoryTurn, 0, len(sess.Chats))
	for _, turn := range sess.Chats {
		history = append(history, resolve.HistoryTurn{Role: turn.Role, Message: turn.Message})
	}

	locRes, err := o.locations.Resolve(ctx, text, userID, history)
	if err != nil {
		return nil, err
	}

	tempRes := o.temporal.Resolve(ctx, text, history)

	loc := weather.LocationRef{Name: locRes.Value}
	if point, err := o.geocoder.Locate(locRes.Value); err != nil {
		log.Printf("chat: %v; passing place name through", err)
	} else if point != nil {
		loc = weather.LocationRef{Point: point}
	}

	now := o.now().UTC()
	window := weather.CurrentWindow(now)
	if tempRes.IsFuture {
		window = weather.DayWindow(tempRes.Target)
	}

	set, err := o.weather.Fetch(ctx, loc, window)
	if err != nil {
		return nil, err
	}

	selected := selectInterval(set.Intervals, tempRes)

	timeOfDay := tempRes.TimeOfDay
	if timeOfDay == resolve.TimeCurrent {
		timeOfDay = resolve.BucketForHour(selected.StartTime.Hour())
	}

	values := selected.Values
	result := &Result{
		SessionID:          sess.ID,
		Location:           locRes.Value,
		LocationSource:     locRes.Source,
		LocationConfidence: locRes.Confidence,
		Date:               tempRes.Date,
		TimeOfDay:          string(timeOfDay),
		IsFuture:           tempRes.IsFuture,
		Temperature:        roundTemp(values.Temperature),
		High:               roundTemp(values.TemperatureMax),
		Low:                roundTemp(values.TemperatureMin),
		Condition:          conditionLabel(values.WeatherCode),
		Precipitation:      precipSummary(values),
		// Humidity arrives on the 0..100 scale already, unlike the
		// fractional precipitation probability.
		Humidity:    roundTemp(values.Humidity),
		WindSpeed:   values.WindSpeed,
		WeatherCode: values.WeatherCode,
	}

	result.Narrative = o.synthesize(ctx, text, result, timeOfDay)

	if err := o.recordTurns(ctx, sess, text, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (o *Orchestrator) findSession(ctx context.Context, userID, sessionID string) (*session.Session, error) {
	if sessionID != "" {
		return o.sessions.FindSessionByID(ctx, sessionID)
	}
	return o.sessions.FindOrCreateActiveSession(ctx, userID)
}

// selectInterval picks the interval the answer is based on. Current queries
// take the first interval. Future queries take the first interval on the
// target date, preferring the time-of-day anchor hour when one is set, and
// degrade to the first interval when the timeline omits the requested date.
func selectInterval(intervals []weather.Interval, tempRes resolve.TemporalResult) weather.Interval {
	if !tempRes.IsFuture {
		return intervals[0]
	}

	anchor, hasAnchor := resolve.AnchorHour(tempRes.TimeOfDay)
	var dateMatch *weather.Interval
	for i := range intervals {
		ts := intervals[i].StartTime
		if ts.Format("2006-01-02") != tempRes.Date {
			continue
		}
		if hasAnchor && ts.Hour() == anchor {
			return intervals[i]
		}
		if dateMatch == nil {
			dateMatch = &intervals[i]
		}
	}
	if dateMatch != nil {
		return *dateMatch
	}
	return intervals[0]
}

// synthesize asks the completion gateway for the natural-language reply,
// degrading to a fixed fallback sentence on failure.
func (o *Orchestrator) synthesize(ctx context.Context, text string, result *Result, timeOfDay resolve.TimeOfDay) string {
	language := o.detectLanguage(ctx, text)

	narrative, err := o.completions.Complete(ctx, narrativePrompt(narrativeContext{
		Location:      result.Location,
		Date:          result.Date,
		TimeOfDay:     timeOfDay,
		IsFuture:      result.IsFuture,
		Temperature:   result.Temperature,
		High:          result.High,
		Low:           result.Low,
		Condition:     result.Condition,
		Precipitation: result.Precipitation,
		Humidity:      result.Humidity,
		WindSpeed:     result.WindSpeed,
		Language:      language,
	}))
	if err != nil {
		log.Printf("chat: narrative synthesis failed: %v", err)
		return fallbackNarrative
	}
	return strings.TrimSpace(narrative)
}

func (o *Orchestrator) detectLanguage(ctx context.Context, text string) string {
	language, err := o.completions.Complete(ctx, completion.LanguageDetectionPrompt(text))
	if err != nil {
		log.Printf("chat: language detection failed: %v", err)
		return ""
	}
	return strings.TrimSpace(language)
}

// recordTurns appends the user message and the assistant narrative to the
// session and fills in the title on a session's first exchange.
func (o *Orchestrator) recordTurns(ctx context.Context, sess *session.Session, text string, result *Result) error {
	next := len(sess.Chats) + 1

	if err := o.sessions.AppendTurn(ctx, sess.ID, session.Turn{
		Role:    "user",
		Message: text,
		Turn:    next,
	}); err != nil {
		return err
	}

	if err := o.sessions.AppendTurn(ctx, sess.ID, session.Turn{
		Role:    "assistant",
		Message: result.Narrative,
		Turn:    next + 1,
		Metadata: map[string]any{
			"location":    result.Location,
			"source":      string(result.LocationSource),
			"date":        result.Date,
			"timeOfDay":   result.TimeOfDay,
			"temperature": result.Temperature,
			"condition":   result.Condition,
			"weatherCode": result.WeatherCode,
		},
	}); err != nil {
		return err
	}

	if sess.Title == "" {
		title, err := o.completions.Complete(ctx, completion.TitlePrompt(text))
		if err != nil {
			log.Printf("chat: title generation failed: %v", err)
			return nil
		}
		title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"`))
		if title == "" {
			return nil
		}
		if err := o.sessions.UpdateSessionTitle(ctx, sess.ID, title); err != nil {
			log.Printf("chat: updating session title failed: %v", err)
		}
	}

	return nil
}
