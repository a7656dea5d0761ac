package itinerary

import (
	"strconv"
	"strings"
	"testing"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

func parisRequest() domain.TripRequest {
	lat, lon, lng := 48.856614, 2.352222, 2.352222
	return domain.TripRequest{
		Destination: &domain.Destination{
			Label: "Paris, Île-de-France, France",
			Value: domain.Place{
				PlaceID:     "88066702",
				DisplayName: "Paris, Île-de-France, France métropolitaine, France",
				Lat:         &lat,
				Lon:         &lon,
				Lng:         &lng,
			},
		},
		Days:      3,
		Budget:    domain.BudgetLuxury,
		Adventure: domain.AdventureCouple,
		Notes:     "loves museums",
	}
}

func TestBuildPromptIncludesTripDetails(t *testing.T) {
	prompt := BuildPrompt(parisRequest())

	for _, want := range []string{
		"Paris, Île-de-France, France",
		"48.856614",
		"2.352222",
		"88066702",
		"3 days",
		"luxury",
		"couple",
		"loves museums",
		"coordinates above are authoritative",
		"Do not invent specific business names",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q\n%s", want, prompt)
		}
	}
}

func TestBuildPromptListsSectionsInOrder(t *testing.T) {
	prompt := BuildPrompt(parisRequest())

	last := -1
	for i, section := range OutputSections {
		marker := strconv.Itoa(i+1) + ". " + section + ":"
		idx := strings.Index(prompt, marker)
		if idx < 0 {
			t.Fatalf("expected section %q in prompt", marker)
		}
		if idx <= last {
			t.Fatalf("expected section %q after the previous one", section)
		}
		last = idx
	}
	if len(OutputSections) != 8 {
		t.Fatalf("expected 8 sections, got %d", len(OutputSections))
	}
	if !strings.Contains(prompt, "each of the 3 days") {
		t.Fatalf("expected day-by-day instruction to name the day count")
	}
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	first := BuildPrompt(parisRequest())
	second := BuildPrompt(parisRequest())
	if first != second {
		t.Fatalf("expected identical prompts for identical requests")
	}
}

func TestBuildPromptStatesMissingCoordinates(t *testing.T) {
	req := parisRequest()
	req.Destination.Value.Lat = nil
	req.Destination.Value.Lon = nil
	req.Destination.Value.Lng = nil
	req.Notes = ""

	prompt := BuildPrompt(req)
	if !strings.Contains(prompt, "Coordinates: missing") {
		t.Fatalf("expected prompt to state coordinates are missing\n%s", prompt)
	}
	if strings.Contains(prompt, "authoritative") {
		t.Fatalf("did not expect coordinate authority rule without coordinates")
	}
	if !strings.Contains(prompt, "Traveller notes: None") {
		t.Fatalf("expected empty notes to render as None")
	}
}

func TestBuildPromptWithoutDestination(t *testing.T) {
	prompt := BuildPrompt(domain.TripRequest{Days: 1, Budget: domain.BudgetCheap, Adventure: domain.AdventureSolo})
	if !strings.Contains(prompt, "Name: Unknown destination") {
		t.Fatalf("expected placeholder destination name")
	}
	if !strings.Contains(prompt, "Trip length: 1 day\n") {
		t.Fatalf("expected singular day phrase")
	}
}
