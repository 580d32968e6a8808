package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProvider struct {
	calls int
	set   IntervalSet
	err   error
}

func (p *fakeProvider) FetchTimeline(ctx context.Context, loc LocationRef, w Window) (IntervalSet, error) {
	p.calls++
	return p.set, p.err
}

func TestGatewayServesCacheWithoutNetworkCall(t *testing.T) {
	provider := &fakeProvider{
		set: IntervalSet{Intervals: []Interval{{StartTime: time.Now().UTC()}}},
	}
	gw := NewGateway(NewCache(5*time.Minute), provider)

	loc := LocationRef{Name: "Rio de Janeiro"}
	w := CurrentWindow(time.Now().UTC())

	if _, err := gw.Fetch(context.Background(), loc, w); err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if _, err := gw.Fetch(context.Background(), loc, w); err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}

	if provider.calls != 1 {
		t.Fatalf("expected exactly 1 provider call, got %d", provider.calls)
	}
}

func TestGatewayEmptyTimelineIsFailure(t *testing.T) {
	provider := &fakeProvider{set: IntervalSet{}}
	gw := NewGateway(NewCache(5*time.Minute), provider)

	_, err := gw.Fetch(context.Background(), LocationRef{Name: "Nowhere"}, CurrentWindow(time.Now().UTC()))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.calls)
	}
}

func TestGatewayWrapsProviderErrors(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	gw := NewGateway(NewCache(5*time.Minute), provider)

	_, err := gw.Fetch(context.Background(), LocationRef{Name: "Nowhere"}, CurrentWindow(time.Now().UTC()))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGatewayDoesNotCacheFailures(t *testing.T) {
	provider := &fakeProvider{set: IntervalSet{}}
	gw := NewGateway(NewCache(5*time.Minute), provider)

	loc := LocationRef{Name: "Nowhere"}
	w := CurrentWindow(time.Now().UTC())

	gw.Fetch(context.Background(), loc, w)
	gw.Fetch(context.Background(), loc, w)

	if provider.calls != 2 {
		t.Fatalf("expected failures to bypass the cache, got %d calls", provider.calls)
	}
}
