package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/i474232898/weather-chat-assistant/internal/weather"
)

// Scheduler periodically refreshes the weather cache for configured place
// names so their 5-minute window stays hot between user queries.
type Scheduler struct {
	scheduler *gocron.Scheduler
	gateway   *weather.Gateway
	locations []string
	interval  time.Duration
}

// New creates a new Scheduler.
func New(locations []string, interval time.Duration, gateway *weather.Gateway) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		gateway:   gateway,
		locations: locations,
		interval:  interval,
	}
}

// Start schedules the periodic warm job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no warm locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 4
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running cache warm job")

		var wg sync.WaitGroup
		for _, name := range s.locations {
			name := name
			wg.Add(1)
			go func() {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				loc := weather.LocationRef{Name: name}
				if _, err := s.gateway.Fetch(ctx, loc, weather.CurrentWindow(time.Now().UTC())); err != nil {
					log.Printf("scheduler: warm fetch failed for %s: %v", name, err)
				}
			}()
		}
		wg.Wait()
		log.Println("scheduler: completed cache warm job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
