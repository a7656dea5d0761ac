package itinerary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

// OutputSections is the section contract the model must follow, in order.
var OutputSections = []string{
	"Introduction",
	"Best Time to Visit",
	"Top Attractions",
	"Day-by-Day Itinerary",
	"Where to Stay",
	"Local Food",
	"Safety Tips",
	"Summary",
}

var budgetGuidance = map[domain.Budget]string{
	domain.BudgetCheap:    "budget-friendly areas with hostels, guesthouses and good public transport",
	domain.BudgetModerate: "mid-range neighbourhoods with comfortable hotels and easy access to the main sights",
	domain.BudgetLuxury:   "upscale districts known for high-end hotels and resorts",
}

var adventureGuidance = map[domain.Adventure]string{
	domain.AdventureSolo:    "a solo traveller: favour walkable areas, social spots and flexible plans",
	domain.AdventureCouple:  "a couple: include relaxed, scenic and romantic experiences",
	domain.AdventureFamily:  "a family: keep the pace gentle and include child-friendly activities",
	domain.AdventureFriends: "a group of friends: include shared activities, nightlife and group-friendly food",
}

// BuildPrompt renders a trip request into the instruction sent to the model.
// The output depends only on req, so identical requests produce identical
// prompts.
func BuildPrompt(req domain.TripRequest) string {
	var (
		label       = "Unknown destination"
		fullAddress = "Not provided"
		placeID     = "Unknown"
		place       domain.Place
	)
	if req.Destination != nil {
		place = req.Destination.Value
		if s := cleanText(req.Destination.Label); s != "" {
			label = s
		}
	}
	if place.DisplayName != "" {
		fullAddress = place.DisplayName
	}
	if place.PlaceID != "" {
		placeID = place.PlaceID
	}
	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = "None"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an experienced travel planner. Create a %s itinerary for the destination described below.\n\n", dayCount(req.Days))

	b.WriteString("Destination details:\n")
	fmt.Fprintf(&b, "- Name: %s\n", label)
	fmt.Fprintf(&b, "- Full address: %s\n", fullAddress)
	if place.HasCoordinates() {
		fmt.Fprintf(&b, "- Coordinates: %s, %s (latitude, longitude)\n", formatCoordinate(*place.Lat), formatCoordinate(*place.Lon))
	} else {
		b.WriteString("- Coordinates: missing (no latitude/longitude was supplied)\n")
	}
	fmt.Fprintf(&b, "- Place ID: %s\n\n", placeID)

	b.WriteString("Trip parameters:\n")
	fmt.Fprintf(&b, "- Trip length: %s\n", daysPhrase(req.Days))
	fmt.Fprintf(&b, "- Budget tier: %s\n", valueOr(string(req.Budget), "unspecified"))
	fmt.Fprintf(&b, "- Travel style: %s\n", valueOr(string(req.Adventure), "unspecified"))
	fmt.Fprintf(&b, "- Traveller notes: %s\n\n", notes)

	b.WriteString("Location rules:\n")
	if place.HasCoordinates() {
		b.WriteString("- The coordinates above are authoritative. Work out the city or locality from the coordinates and plan for that place.\n")
		b.WriteString("- Do not guess the location from the name alone. If the name and the coordinates disagree, trust the coordinates.\n")
	} else {
		b.WriteString("- Coordinates are missing for this destination. Use the name and address to identify it and mention any ambiguity in the introduction.\n")
	}
	b.WriteString("- Do not invent specific business names such as hotels, restaurants or tour operators. Describe areas, neighbourhoods and kinds of places instead; well-known public landmarks may be named.\n")
	if guidance, ok := budgetGuidance[req.Budget]; ok {
		fmt.Fprintf(&b, "- Budget: suggest %s.\n", guidance)
	}
	if guidance, ok := adventureGuidance[req.Adventure]; ok {
		fmt.Fprintf(&b, "- This trip is for %s.\n", guidance)
	}
	b.WriteString("- Take the traveller notes into account wherever they apply.\n\n")

	fmt.Fprintf(&b, "Required output structure (exactly these %d sections, in this order):\n", len(OutputSections))
	for i, section := range OutputSections {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, section, sectionInstruction(i, req))
	}

	b.WriteString("\nFormatting rules:\n")
	b.WriteString("- Start each section with a \"## \" heading using the section name, and each day with a \"### Day N\" heading.\n")
	b.WriteString("- Use \"- \" for bullet points and \"1. \" style numbering for ordered steps.\n")
	b.WriteString("- Use **bold** for emphasis only. Do not use tables, links, images, code blocks or HTML.\n")

	return b.String()
}

func sectionInstruction(index int, req domain.TripRequest) string {
	switch index {
	case 0:
		return "one short paragraph introducing the destination and the feel of this trip."
	case 1:
		return "the best months or seasons to visit and why."
	case 2:
		return "a bullet list of the must-see attractions with one line each."
	case 3:
		if req.Days > 0 {
			return fmt.Sprintf("one \"### Day N\" subsection for each of the %d days (Day 1 to Day %d) with morning, afternoon and evening plans.", req.Days, req.Days)
		}
		return "one \"### Day N\" subsection per day with morning, afternoon and evening plans."
	case 4:
		return fmt.Sprintf("lodging areas that match a %s budget.", valueOr(string(req.Budget), "moderate"))
	case 5:
		return "local dishes and food experiences worth trying."
	case 6:
		return "practical safety tips for this destination."
	default:
		return "a short closing paragraph summarising the trip."
	}
}

func dayCount(days int) string {
	switch {
	case days <= 0:
		return "multi-day"
	case days == 1:
		return "1-day"
	default:
		return strconv.Itoa(days) + "-day"
	}
}

func daysPhrase(days int) string {
	switch {
	case days <= 0:
		return "unspecified"
	case days == 1:
		return "1 day"
	default:
		return strconv.Itoa(days) + " days"
	}
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
