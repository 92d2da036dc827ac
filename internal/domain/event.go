package domain

import "time"

type EventStatus string

const (
	EventStatusClean       EventStatus = "clean"
	EventStatusQuarantined EventStatus = "quarantined"
)

// StagedEvent is the silver-tier row for one logical event, keyed by its
// content fingerprint. At most one row exists per UID; a replayed ingestion
// updates the existing row instead of creating a duplicate.
type StagedEvent struct {
	UID            string
	VenueID        int64
	Name           string
	EventDate      time.Time
	StartTime      string // HH:MM:SS
	EndTime        string // HH:MM:SS, empty when the source omitted it
	PriceMin       *float64
	PriceMax       *float64
	IsFree         bool
	Description    string
	AgeRestriction string
	TicketURL      string
	EventURL       string
	ImageURL       string
	Status         EventStatus
	Source         string
	BronzeID       int64
	ContentHash    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EventGenre links a staged event to a genre. The first-listed genre of an
// upsert is flagged primary.
type EventGenre struct {
	UID       string
	GenreID   int64
	Position  int
	IsPrimary bool
}

// EventArtist links a staged event to a lineup entry. Order is 1-based; the
// first entry is the headliner.
type EventArtist struct {
	UID         string
	ArtistID    int64
	Order       int
	IsHeadliner bool
}
