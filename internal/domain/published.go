package domain

import "time"

// PublishedRecord is the gold-tier copy of a staged event. Only clean,
// audited events reach gold; the content hash records which staged content
// was last published so unchanged events republish as a no-op.
type PublishedRecord struct {
	UID              string
	VenueID          int64
	Name             string
	EventDate        time.Time
	StartTime        string
	EndTime          string
	PriceMin         *float64
	PriceMax         *float64
	IsFree           bool
	Description      string
	AgeRestriction   string
	TicketURL        string
	EventURL         string
	ImageURL         string
	ContentHash      string
	FirstPublishedAt time.Time
	PublishedAt      time.Time
}
