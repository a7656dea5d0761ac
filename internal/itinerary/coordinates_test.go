package itinerary

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeCoordinatesRoundsAndAliases(t *testing.T) {
	dest := NormalizeDestination(map[string]any{
		"label": "Paris, France",
		"value": map[string]any{
			"place_id":     float64(88066702),
			"display_name": "Paris, Île-de-France, France",
			"lat":          "48.85661400123",
			"lng":          2.3522219876543,
		},
	})
	if dest == nil {
		t.Fatalf("expected destination")
	}
	place := dest.Value
	if place.Lat == nil || place.Lon == nil || place.Lng == nil {
		t.Fatalf("expected all coordinates to be present, got %+v", place)
	}
	if *place.Lat != 48.856614 {
		t.Fatalf("expected lat rounded to 48.856614, got %v", *place.Lat)
	}
	if *place.Lon != 2.352222 {
		t.Fatalf("expected lon rounded to 2.352222, got %v", *place.Lon)
	}
	if *place.Lng != *place.Lon {
		t.Fatalf("expected lng to equal lon, got %v and %v", *place.Lng, *place.Lon)
	}
	if place.Lng == place.Lon {
		t.Fatalf("expected lng to be an independent value")
	}
	if place.PlaceID != "88066702" {
		t.Fatalf("expected numeric place id to be stringified, got %q", place.PlaceID)
	}
	if place.DisplayName != "Paris, Île-de-France, France" {
		t.Fatalf("unexpected display name %q", place.DisplayName)
	}
}

func TestNormalizeCoordinatesAcceptsAliasesAtTopLevel(t *testing.T) {
	dest := NormalizeDestination(map[string]any{
		"label":     "Kyoto",
		"placeId":   "abc",
		"latitude":  json.Number("35.0116"),
		"longitude": json.Number("135.7681"),
	})
	if !dest.Value.HasCoordinates() {
		t.Fatalf("expected coordinates from latitude/longitude aliases")
	}
	if *dest.Value.Lat != 35.0116 || *dest.Value.Lng != 135.7681 {
		t.Fatalf("unexpected coordinates %v %v", *dest.Value.Lat, *dest.Value.Lng)
	}
}

func TestNormalizeCoordinatesOmitsPartialOrInvalid(t *testing.T) {
	cases := []map[string]any{
		{"label": "A", "value": map[string]any{"lat": 10.5}},
		{"label": "B", "value": map[string]any{"lon": 10.5}},
		{"label": "C", "value": map[string]any{"lat": "north", "lon": 3}},
		{"label": "D", "value": map[string]any{"lat": nil, "lon": nil}},
		{"label": "E", "value": map[string]any{"lat": "", "lon": "1"}},
		{"label": "F", "value": map[string]any{"lat": "NaN", "lon": "1"}},
		{"label": "G", "value": map[string]any{"lat": "1", "lon": "+Inf"}},
		{"label": "H", "value": map[string]any{"lat": true, "lon": 1}},
		{"label": "I", "value": map[string]any{"lat": 1e303, "lon": 10}},
		{"label": "J", "value": map[string]any{"lat": 10, "lon": "-1e308"}},
		{"label": "K", "value": map[string]any{"lat": 90.5, "lon": 10}},
		{"label": "L", "value": map[string]any{"lat": 10, "lon": json.Number("180.01")}},
	}

	for _, raw := range cases {
		dest := NormalizeDestination(raw)
		data, err := json.Marshal(dest)
		if err != nil {
			t.Fatalf("marshal destination: %v", err)
		}
		for _, key := range []string{`"lat"`, `"lon"`, `"lng"`} {
			if strings.Contains(string(data), key) {
				t.Fatalf("%s: expected %s to be omitted, got %s", raw["label"], key, data)
			}
		}
		if strings.Contains(string(data), "null") {
			t.Fatalf("%s: expected no null values, got %s", raw["label"], data)
		}
	}
}

func TestNormalizeCoordinatesKeepsBoundaryValues(t *testing.T) {
	lat, lon := NormalizeCoordinates(-90, "180")
	if lat == nil || lon == nil {
		t.Fatalf("expected boundary coordinates to be kept")
	}
	if *lat != -90 || *lon != 180 {
		t.Fatalf("unexpected coordinates %v %v", *lat, *lon)
	}
}

func TestNormalizeDestinationLabelFallbacks(t *testing.T) {
	if got := NormalizeDestination(nil); got != nil {
		t.Fatalf("expected nil destination for nil payload, got %+v", got)
	}

	byName := NormalizeDestination(map[string]any{"value": map[string]any{"name": "  Lisbon  "}})
	if byName.Label != "Lisbon" {
		t.Fatalf("expected label from value.name, got %q", byName.Label)
	}

	byDisplay := NormalizeDestination(map[string]any{"value": map[string]any{"formatted_address": "Rome, Lazio, Italy"}})
	if byDisplay.Label != "Rome, Lazio, Italy" {
		t.Fatalf("expected label from formatted address, got %q", byDisplay.Label)
	}
}

func TestNormalizeDestinationKeepsAddressParts(t *testing.T) {
	dest := NormalizeDestination(map[string]any{
		"label": "Porto, Portugal",
		"value": map[string]any{
			"address": map[string]any{"city": "Porto", "country": "Portugal", "postcode": 4000, "state": " "},
		},
	})
	if len(dest.Value.Address) != 2 {
		t.Fatalf("expected only non-empty string parts, got %v", dest.Value.Address)
	}
	if dest.Value.Address["city"] != "Porto" {
		t.Fatalf("expected city part, got %v", dest.Value.Address)
	}
}

func TestNormalizeRequestCoercesForm(t *testing.T) {
	req := NormalizeRequest(RawTripRequest{
		Destination: map[string]any{"label": "Oslo"},
		Days:        "5",
		Budget:      " Luxury ",
		Adventure:   "FAMILY",
		Notes:       "  museums  ",
	})
	if req.Days != 5 {
		t.Fatalf("expected 5 days, got %d", req.Days)
	}
	if req.Budget != "luxury" || req.Adventure != "family" {
		t.Fatalf("expected lowercased enums, got %q %q", req.Budget, req.Adventure)
	}
	if req.Notes != "museums" {
		t.Fatalf("expected trimmed notes, got %q", req.Notes)
	}

	for _, days := range []any{nil, float64(0), float64(2.5), "-1", "x", -3} {
		if got := NormalizeRequest(RawTripRequest{Days: days}).Days; got != 0 {
			t.Fatalf("expected invalid days %v to become 0, got %d", days, got)
		}
	}
}
