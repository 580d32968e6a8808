package geo

import (
	"fmt"

	"github.com/i474232898/weather-chat-assistant/internal/weather"
	"github.com/kelvins/geocoder"
)

// Geocoder converts place names into coordinate points via the Google
// geocoding API. When no key is configured it is a no-op and resolved names
// are passed to the weather provider as-is.
type Geocoder struct {
	enabled bool
}

func New(apiKey string) *Geocoder {
	if apiKey == "" {
		return &Geocoder{}
	}
	geocoder.ApiKey = apiKey
	return &Geocoder{enabled: true}
}

// Locate returns the point for name, or nil when geocoding is disabled.
func (g *Geocoder) Locate(name string) (*weather.Point, error) {
	if !g.enabled || name == "" {
		return nil, nil
	}

	loc, err := geocoder.Geocoding(geocoder.Address{City: name})
	if err != nil {
		return nil, fmt.Errorf("geocoding %q failed: %w", name, err)
	}

	point := &weather.Point{Lat: loc.Latitude, Lon: loc.Longitude}
	if !point.Valid() {
		return nil, fmt.Errorf("geocoding %q returned out-of-range coordinates", name)
	}
	return point, nil
}
