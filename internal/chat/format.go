package chat

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/i474232898/weather-chat-assistant/internal/completion"
	"github.com/i474232898/weather-chat-assistant/internal/resolve"
	"github.com/i474232898/weather-chat-assistant/internal/weather"
)

// fallbackNarrative is used when narrative synthesis fails; the query itself
// still succeeds.
const fallbackNarrative = "I couldn't write a summary right now, but the forecast details above are up to date."

// conditionLabels maps Tomorrow.io weather codes to human-readable labels.
var conditionLabels = map[int]string{
	1000: "clear",
	1100: "mostly clear",
	1101: "partly cloudy",
	1102: "mostly cloudy",
	1001: "cloudy",
	2000: "fog",
	2100: "light fog",
	4000: "drizzle",
	4001: "rain",
	4200: "light rain",
	4201: "heavy rain",
	5000: "snow",
	5001: "flurries",
	5100: "light snow",
	5101: "heavy snow",
	6000: "freezing drizzle",
	6001: "freezing rain",
	6200: "light freezing rain",
	6201: "heavy freezing rain",
	7000: "ice pellets",
	7101: "heavy ice pellets",
	7102: "light ice pellets",
	8000: "thunderstorm",
}

func conditionLabel(code int) string {
	if label, ok := conditionLabels[code]; ok {
		return label
	}
	return "unknown"
}

func roundTemp(v float64) int {
	return int(math.Round(v))
}

// percent converts a provider fractional value (0..1) to a rounded integer
// percentage.
func percent(frac float64) int {
	return int(math.Round(frac * 100))
}

// precipSummary renders "{probability}% {type} ({intensity} mm/h)". The
// dominant precipitation type is the first with nonzero intensity in the
// priority order rain > snow > freezing rain > sleet. Without a type-specific
// intensity the bare percentage is rendered; zero probability is just "0%".
func precipSummary(v weather.Values) string {
	prob := percent(v.PrecipitationProbability)
	if prob == 0 {
		return "0%"
	}

	types := []struct {
		label     string
		intensity float64
	}{
		{"rain", v.RainIntensity},
		{"snow", v.SnowIntensity},
		{"freezing rain", v.FreezingRainIntensity},
		{"sleet", v.SleetIntensity},
	}
	for _, t := range types {
		if t.intensity > 0 {
			return fmt.Sprintf("%d%% %s (%s mm/h)",
				prob, t.label, strconv.FormatFloat(t.intensity, 'f', -1, 64))
		}
	}

	return fmt.Sprintf("%d%%", prob)
}

// narrativeContext is the structured prompt context handed to the completion
// gateway for the final natural-language reply.
type narrativeContext struct {
	Location      string
	Date          string
	TimeOfDay     resolve.TimeOfDay
	IsFuture      bool
	Temperature   int
	High          int
	Low           int
	Condition     string
	Precipitation string
	Humidity      int
	WindSpeed     float64
	Language      string
}

const narrativeSystem = `You are a friendly weather assistant. Write a short reply
(one to three sentences) describing the weather below. Do not invent values.`

func narrativePrompt(nc narrativeContext) []completion.Message {
	var b strings.Builder

	tense := "current conditions"
	if nc.IsFuture {
		tense = fmt.Sprintf("forecast for %s (%s)", nc.Date, nc.TimeOfDay)
	}

	fmt.Fprintf(&b, "Location: %s\n", nc.Location)
	fmt.Fprintf(&b, "Query type: %s\n", tense)
	fmt.Fprintf(&b, "Temperature: %d°C (high %d°C, low %d°C)\n", nc.Temperature, nc.High, nc.Low)
	fmt.Fprintf(&b, "Condition: %s\n", nc.Condition)
	fmt.Fprintf(&b, "Precipitation: %s\n", nc.Precipitation)
	fmt.Fprintf(&b, "Humidity: %d%%\n", nc.Humidity)
	fmt.Fprintf(&b, "Wind: %.1f m/s\n", nc.WindSpeed)

	language := nc.Language
	if language == "" {
		language = "the same language as the user's question"
	}
	fmt.Fprintf(&b, "Reply in %s.", language)

	return []completion.Message{
		{Role: completion.RoleSystem, Content: narrativeSystem},
		{Role: completion.RoleUser, Content: b.String()},
	}
}
