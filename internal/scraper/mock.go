// Package scraper provides a mock event source. It stands in for real
// scrapers so the pipeline can be exercised without external dependencies.
package scraper

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sgmusicchat/newsite/internal/domain"
)

const Version = "mock_v1.0.0"

var eventNames = []string{
	"Techno Night @ %s",
	"House Music Festival",
	"Underground Beats",
	"Electronic Sunset Sessions",
	"Bass & Breaks",
	"Ambient Soundscapes",
	"Trance Journey",
	"Deep House Sessions",
	"Drum & Bass Takeover",
	"Minimal Techno Showcase",
}

var ageRestrictions = []string{"all_ages", "18+", "21+"}

// Mock generates plausible raw events against a fixed pool of venue, genre
// and artist ids. The random source is injected so tests can seed it.
type Mock struct {
	rng *rand.Rand
}

func NewMock(rng *rand.Rand) *Mock {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Mock{rng: rng}
}

// Generate returns count raw events dated 1-30 days from now.
func (m *Mock) Generate(count int, now time.Time) []domain.RawEvent {
	events := make([]domain.RawEvent, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, m.event(i, now))
	}
	return events
}

func (m *Mock) event(i int, now time.Time) domain.RawEvent {
	eventDate := now.AddDate(0, 0, 1+m.rng.Intn(30))

	startHour := 18 + m.rng.Intn(6) // 18:00 - 23:00
	endHour := (startHour + 3 + m.rng.Intn(3)) % 24

	isFree := m.rng.Float64() < 0.2
	var priceMin, priceMax *float64
	var ticketURL string
	if !isFree {
		min := float64([]int{10, 15, 20, 25, 30}[m.rng.Intn(5)])
		max := min + float64([]int{0, 10, 20}[m.rng.Intn(3)])
		priceMin, priceMax = &min, &max
		ticketURL = fmt.Sprintf("https://example.com/tickets/event-%d", i+1)
	}

	venueID := int64(1 + m.rng.Intn(10))
	name := eventNames[m.rng.Intn(len(eventNames))]
	if strings.Contains(name, "%s") {
		name = fmt.Sprintf(name, fmt.Sprintf("Venue%d", venueID))
	}

	return domain.RawEvent{
		VenueID:        &venueID,
		EventDate:      eventDate.Format("2006-01-02"),
		EventName:      name,
		StartTime:      fmt.Sprintf("%02d:00:00", startHour),
		EndTime:        fmt.Sprintf("%02d:00:00", endHour),
		PriceMin:       priceMin,
		PriceMax:       priceMax,
		IsFree:         isFree,
		Description:    fmt.Sprintf("Mock event %d for testing purposes.", i+1),
		AgeRestriction: ageRestrictions[m.rng.Intn(len(ageRestrictions))],
		TicketURL:      ticketURL,
		EventURL:       fmt.Sprintf("https://example.com/events/event-%d", i+1),
		ImageURL:       fmt.Sprintf("https://picsum.photos/seed/event%d/800/600", i+1),
		GenreIDs:       m.sampleIDs(11, 1+m.rng.Intn(3)),
		ArtistIDs:      m.sampleIDs(20, 1+m.rng.Intn(4)),
		ScrapedAt:      now.UTC().Format(time.RFC3339),
		ScraperVersion: Version,
	}
}

// sampleIDs draws count distinct ids from the pool 1..pool.
func (m *Mock) sampleIDs(pool, count int) []int64 {
	if count > pool {
		count = pool
	}
	seen := make(map[int64]bool, count)
	ids := make([]int64, 0, count)
	for len(ids) < count {
		id := int64(1 + m.rng.Intn(pool))
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// BadEvent returns a raw event that violates exactly one audit rule, for
// quarantine testing. Kind cycles through the four rules.
func (m *Mock) BadEvent(now time.Time) domain.RawEvent {
	venueID := int64(1)
	price := 20.0
	future := now.AddDate(0, 0, 5).Format("2006-01-02")

	bad := []domain.RawEvent{
		{
			VenueID:   &venueID,
			EventDate: now.AddDate(0, 0, -30).Format("2006-01-02"),
			EventName: "Past Event (Should Be Quarantined)",
			StartTime: "20:00:00",
			EndTime:   "23:00:00",
			PriceMin:  &price,
		},
		{
			VenueID:   &venueID,
			EventDate: future,
			EventName: "Temporal Violation (Should Be Quarantined)",
			StartTime: "23:00:00",
			EndTime:   "20:00:00",
			PriceMin:  &price,
		},
		{
			VenueID:   &venueID,
			EventDate: now.AddDate(0, 0, 200).Format("2006-01-02"),
			EventName: "Too Far Future (Should Be Quarantined)",
			StartTime: "20:00:00",
			EndTime:   "23:00:00",
			PriceMin:  &price,
		},
		{
			VenueID:   &venueID,
			EventDate: future,
			EventName: "Free Event With Price (Should Be Quarantined)",
			StartTime: "20:00:00",
			EndTime:   "23:00:00",
			IsFree:    true,
			PriceMin:  &price,
		},
	}

	ev := bad[m.rng.Intn(len(bad))]
	ev.ScraperVersion = Version
	return ev
}
