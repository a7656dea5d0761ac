package itinerary

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/gemini"
)

const (
	PlaceholderDestination = "Unknown destination"
	PlaceholderValue       = "-"
	PlaceholderItinerary   = "No itinerary available yet."
)

// lookup functions return ok=false when their source does not hold a usable
// value, so the next entry in the chain is tried.
type textLookup func(doc gjson.Result) (string, bool)

// Stored trips went through several layouts: request fields at the top level,
// fields nested under "payload", and text only recoverable from the raw
// upstream body. Each chain below is tried in order.
var (
	destinationChain = []textLookup{
		stringField("destination.label"),
		stringField("payload.destination.label"),
		stringField("destination.value.displayName"),
		stringField("destination.value.display_name"),
		stringField("payload.destination.value.displayName"),
		stringField("payload.destination.value.display_name"),
		stringField("destination"),
		stringField("payload.destination"),
	}
	budgetChain = []textLookup{
		stringField("budget"),
		stringField("payload.budget"),
	}
	adventureChain = []textLookup{
		stringField("adventure"),
		stringField("payload.adventure"),
	}
	notesChain = []textLookup{
		stringField("notes"),
		stringField("payload.notes"),
	}
	itineraryChain = []textLookup{
		stringField("aiResponse"),
		stringField("payload.aiResponse"),
		stringField("ai_response"),
		upstreamField("raw"),
		upstreamField("payload.raw"),
	}
	daysPaths      = []string{"days", "payload.days"}
	createdAtPaths = []string{"createdAt", "payload.createdAt", "created_at"}
)

// Summarize decodes a stored trip of any known layout into display values.
// It never fails: fields it cannot recover are replaced with placeholders.
func Summarize(doc []byte) domain.TripSummary {
	summary := domain.TripSummary{
		Destination: PlaceholderDestination,
		DaysLabel:   PlaceholderValue,
		Budget:      PlaceholderValue,
		Adventure:   PlaceholderValue,
		Itinerary:   PlaceholderItinerary,
		Status:      domain.TripStatusPending,
	}
	if len(doc) == 0 || !gjson.ValidBytes(doc) {
		return summary
	}
	root := gjson.ParseBytes(doc)
	if !root.IsObject() {
		return summary
	}

	if v, ok := firstText(root, destinationChain); ok {
		summary.Destination = v
	}
	if v, ok := firstText(root, budgetChain); ok {
		summary.Budget = v
	}
	if v, ok := firstText(root, adventureChain); ok {
		summary.Adventure = v
	}
	if v, ok := firstText(root, notesChain); ok {
		summary.Notes = v
	}
	if days, ok := firstDays(root); ok {
		summary.Days = days
		summary.DaysLabel = strconv.Itoa(days)
	}
	if v, ok := firstText(root, itineraryChain); ok {
		summary.Itinerary = v
		summary.HasItinerary = true
	}
	if ts, ok := firstTime(root); ok {
		summary.CreatedAt = ts
	}

	summary.Status = resolveStatus(root, summary.HasItinerary)
	if summary.Status == domain.TripStatusError {
		summary.Error = valueOr(errorText(root), "Generation failed")
	}
	return summary
}

// Excerpt flattens itinerary text to a single line of at most limit runes.
func Excerpt(text string, limit int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if limit <= 0 || len(runes) <= limit {
		return flat
	}
	return string(runes[:limit]) + "…"
}

func firstText(root gjson.Result, chain []textLookup) (string, bool) {
	for _, lookup := range chain {
		if v, ok := lookup(root); ok {
			return v, true
		}
	}
	return "", false
}

func stringField(path string) textLookup {
	return func(doc gjson.Result) (string, bool) {
		r := doc.Get(path)
		if r.Type != gjson.String {
			return "", false
		}
		s := strings.TrimSpace(r.Str)
		return s, s != ""
	}
}

// upstreamField reads text out of a stored upstream response. Some rows hold
// it as an object, others as a JSON-encoded string.
func upstreamField(path string) textLookup {
	return func(doc gjson.Result) (string, bool) {
		r := doc.Get(path)
		switch {
		case r.IsObject():
			return gemini.ExtractText([]byte(r.Raw))
		case r.Type == gjson.String:
			return gemini.ExtractText([]byte(r.Str))
		default:
			return "", false
		}
	}
}

func firstDays(root gjson.Result) (int, bool) {
	for _, path := range daysPaths {
		r := root.Get(path)
		switch r.Type {
		case gjson.Number:
			if r.Num >= 1 && r.Num == math.Trunc(r.Num) && r.Num <= math.MaxInt32 {
				return int(r.Num), true
			}
		case gjson.String:
			if n, err := strconv.Atoi(strings.TrimSpace(r.Str)); err == nil && n >= 1 {
				return n, true
			}
		}
	}
	return 0, false
}

func firstTime(root gjson.Result) (time.Time, bool) {
	for _, path := range createdAtPaths {
		r := root.Get(path)
		switch {
		case r.Type == gjson.String:
			if ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(r.Str)); err == nil {
				return ts.UTC(), true
			}
		case r.IsObject():
			// exported document-store timestamps: {"seconds": n} or {"_seconds": n}
			for _, key := range []string{"seconds", "_seconds"} {
				if secs := r.Get(key); secs.Type == gjson.Number {
					return time.Unix(secs.Int(), 0).UTC(), true
				}
			}
		}
	}
	return time.Time{}, false
}

func resolveStatus(root gjson.Result, hasItinerary bool) domain.TripStatus {
	if r := root.Get("status"); r.Type == gjson.String {
		if status := domain.TripStatus(strings.ToLower(strings.TrimSpace(r.Str))); status.Valid() {
			return status
		}
	}
	if hasItinerary {
		return domain.TripStatusDone
	}
	if errorText(root) != "" {
		return domain.TripStatusError
	}
	return domain.TripStatusPending
}

func errorText(root gjson.Result) string {
	r := root.Get("error")
	switch {
	case r.Type == gjson.String:
		return strings.TrimSpace(r.Str)
	case r.IsObject():
		if msg := r.Get("message"); msg.Type == gjson.String {
			return strings.TrimSpace(msg.Str)
		}
	}
	return ""
}
