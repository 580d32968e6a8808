package weather

import (
	"testing"
	"time"
)

// TestCacheTTLBoundary verifies an entry is served just under the TTL and
// treated as absent just over it.
func TestCacheTTLBoundary(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base

	cache := NewCache(5 * time.Minute)
	cache.now = func() time.Time { return now }

	key := "-22.9255, -43.1784"
	set := IntervalSet{
		Location:  LocationRef{Point: &Point{Lat: -22.9255, Lon: -43.1784}},
		Intervals: []Interval{{StartTime: base}},
	}
	cache.Set(key, set)

	now = base.Add(4*time.Minute + 59*time.Second)
	if _, ok := cache.Get(key); !ok {
		t.Fatal("expected cache hit at 4m59s")
	}

	now = base.Add(5*time.Minute + 1*time.Second)
	if _, ok := cache.Get(key); ok {
		t.Fatal("expected cache miss at 5m01s")
	}
}

func TestCacheMissForUnknownKey(t *testing.T) {
	cache := NewCache(5 * time.Minute)
	if _, ok := cache.Get("Rio de Janeiro"); ok {
		t.Fatal("expected miss for key never written")
	}
}

func TestLocationRefKey(t *testing.T) {
	named := LocationRef{Name: "São Paulo"}
	if got := named.Key(); got != "São Paulo" {
		t.Fatalf("unexpected name key: %q", got)
	}

	point := LocationRef{Point: &Point{Lat: -22.9255, Lon: -43.1784}}
	if got := point.Key(); got != "-22.9255, -43.1784" {
		t.Fatalf("unexpected point key: %q", got)
	}

	// The canonical key is stable across calls.
	if point.Key() != point.Key() {
		t.Fatal("point key is not stable")
	}
}

func TestPointValid(t *testing.T) {
	cases := []struct {
		point Point
		want  bool
	}{
		{Point{Lat: -22.9255, Lon: -43.1784}, true},
		{Point{Lat: 90, Lon: 180}, true},
		{Point{Lat: 91, Lon: 0}, false},
		{Point{Lat: 0, Lon: -181}, false},
	}
	for _, tc := range cases {
		if got := tc.point.Valid(); got != tc.want {
			t.Errorf("Valid(%v) = %v, want %v", tc.point, got, tc.want)
		}
	}
}
