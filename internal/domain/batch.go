package domain

import (
	"encoding/json"
	"time"
)

// RawBatch is one immutable bronze-tier record: a batch of raw payloads
// exactly as received from a source. Bronze is append-only and is the
// system-of-record for what arrived.
type RawBatch struct {
	ID         int64
	Source     string
	Version    string
	ReceivedAt time.Time
	Payload    json.RawMessage
}

// RawEvent is the wire format a scraper or form submits inside a batch
// payload. Identity fields (venue_id, event_date, start_time) are required;
// everything else is volatile and may be corrected by later submissions.
type RawEvent struct {
	VenueID        *int64   `json:"venue_id"`
	EventDate      string   `json:"event_date"`
	EventName      string   `json:"event_name"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time,omitempty"`
	PriceMin       *float64 `json:"price_min"`
	PriceMax       *float64 `json:"price_max"`
	IsFree         bool     `json:"is_free"`
	Description    string   `json:"description,omitempty"`
	AgeRestriction string   `json:"age_restriction,omitempty"`
	TicketURL      string   `json:"ticket_url,omitempty"`
	EventURL       string   `json:"event_url,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	GenreIDs       []int64  `json:"genre_ids,omitempty"`
	ArtistIDs      []int64  `json:"artist_ids,omitempty"`
	ScrapedAt      string   `json:"scraped_at,omitempty"`
	ScraperVersion string   `json:"scraper_version,omitempty"`
}
