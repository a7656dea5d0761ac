package itinerary

import (
	"testing"
	"time"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

func TestSummarizeCurrentLayout(t *testing.T) {
	doc := []byte(`{
		"payload": {
			"destination": {"label": "Paris, France", "value": {"displayName": "Paris"}},
			"days": 3,
			"budget": "luxury",
			"adventure": "couple",
			"notes": "museums"
		},
		"aiResponse": "## Introduction\nBonjour",
		"status": "done",
		"createdAt": "2025-01-02T03:04:05Z"
	}`)

	summary := Summarize(doc)
	if summary.Destination != "Paris, France" {
		t.Fatalf("expected destination label, got %q", summary.Destination)
	}
	if summary.Days != 3 || summary.DaysLabel != "3" {
		t.Fatalf("expected 3 days, got %d/%q", summary.Days, summary.DaysLabel)
	}
	if summary.Budget != "luxury" || summary.Adventure != "couple" || summary.Notes != "museums" {
		t.Fatalf("unexpected trip fields %+v", summary)
	}
	if !summary.HasItinerary || summary.Itinerary != "## Introduction\nBonjour" {
		t.Fatalf("expected itinerary text, got %q", summary.Itinerary)
	}
	if summary.Status != domain.TripStatusDone {
		t.Fatalf("expected done status, got %q", summary.Status)
	}
	want := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if !summary.CreatedAt.Equal(want) {
		t.Fatalf("expected created at %v, got %v", want, summary.CreatedAt)
	}
}

func TestSummarizeRecoversTextFromRawOnly(t *testing.T) {
	doc := []byte(`{
		"destination": {"label": "Hanoi"},
		"days": "4",
		"raw": {"candidates": [{"content": {"parts": [{"text": "Day one"}]}}]}
	}`)

	summary := Summarize(doc)
	if summary.Itinerary != "Day one" {
		t.Fatalf("expected text from raw response, got %q", summary.Itinerary)
	}
	if summary.Status != domain.TripStatusDone {
		t.Fatalf("expected status to be derived as done, got %q", summary.Status)
	}
	if summary.Days != 4 {
		t.Fatalf("expected string days to be read, got %d", summary.Days)
	}
}

func TestSummarizeReadsRawStoredAsString(t *testing.T) {
	doc := []byte(`{"payload": {"raw": "{\"candidates\":[{\"output\":\"Legacy text\"}]}"}}`)

	summary := Summarize(doc)
	if summary.Itinerary != "Legacy text" {
		t.Fatalf("expected text from encoded raw response, got %q", summary.Itinerary)
	}
}

func TestSummarizeWithNothingExtractable(t *testing.T) {
	for _, doc := range [][]byte{
		nil,
		[]byte(`not json`),
		[]byte(`[]`),
		[]byte(`{"raw": {"candidates": []}, "days": 0}`),
	} {
		summary := Summarize(doc)
		if summary.Destination != PlaceholderDestination {
			t.Fatalf("%s: expected placeholder destination, got %q", doc, summary.Destination)
		}
		if summary.DaysLabel != PlaceholderValue || summary.Budget != PlaceholderValue || summary.Adventure != PlaceholderValue {
			t.Fatalf("%s: expected placeholder values, got %+v", doc, summary)
		}
		if summary.HasItinerary || summary.Itinerary != PlaceholderItinerary {
			t.Fatalf("%s: expected placeholder itinerary, got %q", doc, summary.Itinerary)
		}
		if summary.Status != domain.TripStatusPending {
			t.Fatalf("%s: expected pending status, got %q", doc, summary.Status)
		}
	}
}

func TestSummarizeErrorStatus(t *testing.T) {
	summary := Summarize([]byte(`{"status": "error", "error": "upstream returned 503"}`))
	if summary.Status != domain.TripStatusError {
		t.Fatalf("expected error status, got %q", summary.Status)
	}
	if summary.Error != "upstream returned 503" {
		t.Fatalf("expected error text, got %q", summary.Error)
	}

	derived := Summarize([]byte(`{"error": {"message": "quota"}}`))
	if derived.Status != domain.TripStatusError || derived.Error != "quota" {
		t.Fatalf("expected derived error status, got %q/%q", derived.Status, derived.Error)
	}

	bare := Summarize([]byte(`{"status": "error"}`))
	if bare.Error != "Generation failed" {
		t.Fatalf("expected default error text, got %q", bare.Error)
	}
}

func TestSummarizeLegacyTimestamp(t *testing.T) {
	summary := Summarize([]byte(`{"createdAt": {"_seconds": 1700000000, "_nanoseconds": 0}}`))
	if summary.CreatedAt.Unix() != 1700000000 {
		t.Fatalf("expected seconds timestamp, got %v", summary.CreatedAt)
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("## Intro\n\nshort", 160); got != "## Intro short" {
		t.Fatalf("expected flattened text, got %q", got)
	}
	if got := Excerpt("héllo wörld", 5); got != "héllo…" {
		t.Fatalf("expected rune-safe truncation, got %q", got)
	}
}
