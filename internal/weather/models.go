package weather

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnavailable is returned when the provider yields no usable interval
	// data after retries, or fails with a non-retryable error.
	ErrUnavailable = errors.New("weather data unavailable")
)

// Point is a geographic coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within [-90,90]x[-180,180].
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// LocationRef identifies the place a query is about. Exactly one of Name or
// Point is set at a time.
type LocationRef struct {
	Name  string `json:"name,omitempty"`
	Point *Point `json:"point,omitempty"`
}

// Key returns the canonical cache/provider key for this reference: the place
// name as-is, or the coordinate pair formatted to 4 decimal places.
func (l LocationRef) Key() string {
	if l.Point != nil {
		return fmt.Sprintf("%.4f, %.4f", l.Point.Lat, l.Point.Lon)
	}
	return l.Name
}

// Window is an inclusive start/end time range plus the field set requested
// from the provider.
type Window struct {
	Start  time.Time
	End    time.Time
	Fields []string
}

// DefaultFields is the full field list requested on every timeline call.
var DefaultFields = []string{
	"temperature",
	"temperatureMin",
	"temperatureMax",
	"humidity",
	"windSpeed",
	"precipitationProbability",
	"rainIntensity",
	"snowIntensity",
	"freezingRainIntensity",
	"sleetIntensity",
	"weatherCode",
}

// CurrentWindow is the window used for "current conditions" queries:
// now up to five days ahead.
func CurrentWindow(now time.Time) Window {
	return Window{
		Start:  now,
		End:    now.AddDate(0, 0, 5),
		Fields: DefaultFields,
	}
}

// DayWindow spans exactly one calendar day starting at midnight UTC.
func DayWindow(day time.Time) Window {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return Window{
		Start:  start,
		End:    start.AddDate(0, 0, 1),
		Fields: DefaultFields,
	}
}

// Values holds the provider fields for a single forecast interval.
type Values struct {
	Temperature              float64 `json:"temperature"`
	TemperatureMin           float64 `json:"temperatureMin"`
	TemperatureMax           float64 `json:"temperatureMax"`
	Humidity                 float64 `json:"humidity"`
	WindSpeed                float64 `json:"windSpeed"`
	PrecipitationProbability float64 `json:"precipitationProbability"`
	RainIntensity            float64 `json:"rainIntensity"`
	SnowIntensity            float64 `json:"snowIntensity"`
	FreezingRainIntensity    float64 `json:"freezingRainIntensity"`
	SleetIntensity           float64 `json:"sleetIntensity"`
	WeatherCode              int     `json:"weatherCode"`
}

// Interval is one timeline step as returned by the provider.
type Interval struct {
	StartTime time.Time `json:"startTime"`
	Values    Values    `json:"values"`
}

// IntervalSet is the normalized payload for one resolved location/window.
type IntervalSet struct {
	Location  LocationRef `json:"location"`
	Intervals []Interval  `json:"intervals"`
}
