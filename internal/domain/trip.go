package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Budget string

const (
	BudgetCheap    Budget = "cheap"
	BudgetModerate Budget = "moderate"
	BudgetLuxury   Budget = "luxury"
)

func (b Budget) Valid() bool {
	switch b {
	case BudgetCheap, BudgetModerate, BudgetLuxury:
		return true
	default:
		return false
	}
}

type Adventure string

const (
	AdventureSolo    Adventure = "solo"
	AdventureCouple  Adventure = "couple"
	AdventureFamily  Adventure = "family"
	AdventureFriends Adventure = "friends"
)

func (a Adventure) Valid() bool {
	switch a {
	case AdventureSolo, AdventureCouple, AdventureFamily, AdventureFriends:
		return true
	default:
		return false
	}
}

type TripStatus string

const (
	TripStatusPending TripStatus = "pending"
	TripStatusDone    TripStatus = "done"
	TripStatusError   TripStatus = "error"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPending, TripStatusDone, TripStatusError:
		return true
	default:
		return false
	}
}

// MaxTripDays mirrors the upper bound of the trip length picker.
const MaxTripDays = 30

// Place is the canonical destination shape. Coordinates are either all
// present (lng always equals lon) or all omitted.
type Place struct {
	PlaceID     string            `json:"placeId,omitempty"`
	DisplayName string            `json:"displayName,omitempty"`
	Lat         *float64          `json:"lat,omitempty"`
	Lon         *float64          `json:"lon,omitempty"`
	Lng         *float64          `json:"lng,omitempty"`
	Address     map[string]string `json:"address,omitempty"`
}

func (p Place) HasCoordinates() bool {
	return p.Lat != nil && p.Lon != nil
}

type Destination struct {
	Label string `json:"label"`
	Value Place  `json:"value"`
}

type TripRequest struct {
	Destination *Destination `json:"destination"`
	Days        int          `json:"days"`
	Budget      Budget       `json:"budget"`
	Adventure   Adventure    `json:"adventure"`
	Notes       string       `json:"notes,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// GeneratedTrip is the document written for every submission. It starts out
// pending and is merged exactly once into done or error.
type GeneratedTrip struct {
	Payload    TripRequest     `json:"payload"`
	AIResponse string          `json:"aiResponse,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"`
	Status     TripStatus      `json:"status"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  *time.Time      `json:"updatedAt,omitempty"`
}

// Document holds a stored trip as JSON. Older rows use other layouts, so it
// is decoded at read time rather than scanned into GeneratedTrip.
type Document []byte

func (d *Document) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = nil
	case []byte:
		*d = append((*d)[:0], v...)
	case string:
		*d = Document(v)
	default:
		return fmt.Errorf("document: unsupported scan type %T", src)
	}
	return nil
}

func (d Document) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return string(d), nil
}

type TripRecord struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_account_id"`
	Status    TripStatus `db:"status"`
	Document  Document   `db:"document"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// TripSummary is the display-ready view of a stored trip. Missing values are
// already replaced with placeholders.
type TripSummary struct {
	ID           uuid.UUID  `json:"id"`
	Destination  string     `json:"destination"`
	Days         int        `json:"days,omitempty"`
	DaysLabel    string     `json:"days_label"`
	Budget       string     `json:"budget"`
	Adventure    string     `json:"adventure"`
	Notes        string     `json:"notes,omitempty"`
	Status       TripStatus `json:"status"`
	Error        string     `json:"error,omitempty"`
	Itinerary    string     `json:"itinerary,omitempty"`
	Excerpt      string     `json:"excerpt,omitempty"`
	HasItinerary bool       `json:"has_itinerary"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TripFilter narrows a trip listing. An empty Statuses slice matches every
// status.
type TripFilter struct {
	Statuses []TripStatus
	Limit    int
	Offset   int
}

// TripSearchDocument is what the search index stores for one trip.
type TripSearchDocument struct {
	TripID      uuid.UUID  `json:"trip_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Destination string     `json:"destination"`
	Budget      string     `json:"budget"`
	Adventure   string     `json:"adventure"`
	Notes       string     `json:"notes,omitempty"`
	Itinerary   string     `json:"itinerary"`
	Status      TripStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TripSearchHit is a matching trip id with its relevance score.
type TripSearchHit struct {
	TripID uuid.UUID `json:"trip_id"`
	Score  float64   `json:"score"`
}
