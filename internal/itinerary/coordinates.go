package itinerary

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
)

const (
	coordinateScale = 1e6
	maxLatitude     = 90
	maxLongitude    = 180
)

var (
	latitudeKeys    = []string{"lat", "latitude"}
	longitudeKeys   = []string{"lon", "lng", "longitude"}
	placeIDKeys     = []string{"placeId", "place_id"}
	displayNameKeys = []string{"displayName", "display_name", "formatted_address"}
)

// NormalizeCoordinates coerces a raw latitude/longitude pair. Both values are
// rounded to six decimals; if either side is missing, not a finite number or
// off the globe both results are nil.
func NormalizeCoordinates(lat, lon any) (*float64, *float64) {
	latValue, ok := coerceCoordinate(lat, maxLatitude)
	if !ok {
		return nil, nil
	}
	lonValue, ok := coerceCoordinate(lon, maxLongitude)
	if !ok {
		return nil, nil
	}
	return &latValue, &lonValue
}

// NormalizeDestination turns an autocomplete payload into the canonical
// destination shape. Fields are read from the nested "value" object first and
// from the top level second. A nil or empty payload yields nil.
func NormalizeDestination(raw map[string]any) *domain.Destination {
	if len(raw) == 0 {
		return nil
	}

	sources := make([]map[string]any, 0, 2)
	if value, ok := raw["value"].(map[string]any); ok {
		sources = append(sources, value)
	}
	sources = append(sources, raw)

	place := domain.Place{
		PlaceID:     lookupString(sources, placeIDKeys...),
		DisplayName: lookupString(sources, displayNameKeys...),
		Address:     lookupAddress(sources),
	}
	if place.DisplayName == "" {
		if address, ok := lookup(sources, "address").(string); ok {
			place.DisplayName = cleanText(address)
		}
	}

	lat, lon := NormalizeCoordinates(lookup(sources, latitudeKeys...), lookup(sources, longitudeKeys...))
	if lat != nil && lon != nil {
		lng := *lon
		place.Lat = lat
		place.Lon = lon
		place.Lng = &lng
	}

	label := ""
	if v, ok := raw["label"].(string); ok {
		label = cleanText(v)
	}
	if label == "" {
		label = lookupString(sources, "name")
	}
	if label == "" {
		label = place.DisplayName
	}

	return &domain.Destination{Label: label, Value: place}
}

// NormalizeRequest coerces a submitted form into a TripRequest. It does not
// validate; callers check the result before building a prompt.
func NormalizeRequest(raw RawTripRequest) domain.TripRequest {
	days, ok := coerceDays(raw.Days)
	if !ok {
		days = 0
	}
	return domain.TripRequest{
		Destination: NormalizeDestination(raw.Destination),
		Days:        days,
		Budget:      domain.Budget(strings.ToLower(strings.TrimSpace(raw.Budget))),
		Adventure:   domain.Adventure(strings.ToLower(strings.TrimSpace(raw.Adventure))),
		Notes:       strings.TrimSpace(raw.Notes),
	}
}

// RawTripRequest is the loosely typed form body as received from clients.
type RawTripRequest struct {
	Destination map[string]any `json:"destination"`
	Days        any            `json:"days"`
	Budget      string         `json:"budget"`
	Adventure   string         `json:"adventure"`
	Notes       string         `json:"notes"`
}

func lookup(sources []map[string]any, keys ...string) any {
	for _, source := range sources {
		for _, key := range keys {
			if v, ok := source[key]; ok && v != nil {
				return v
			}
		}
	}
	return nil
}

func lookupString(sources []map[string]any, keys ...string) string {
	for _, source := range sources {
		for _, key := range keys {
			switch v := source[key].(type) {
			case string:
				if s := cleanText(v); s != "" {
					return s
				}
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			case json.Number:
				return v.String()
			}
		}
	}
	return ""
}

func lookupAddress(sources []map[string]any) map[string]string {
	for _, source := range sources {
		parts, ok := source["address"].(map[string]any)
		if !ok {
			continue
		}
		out := make(map[string]string, len(parts))
		for key, value := range parts {
			if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
				out[key] = strings.TrimSpace(s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// coerceCoordinate rejects values beyond ±limit before rounding, so the
// result is always finite.
func coerceCoordinate(v any, limit float64) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.Abs(f) > limit {
		return 0, false
	}
	return math.Round(f*coordinateScale) / coordinateScale, true
}

func coerceDays(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n < 1 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case int:
		return n, n >= 1
	case json.Number:
		parsed, err := strconv.Atoi(n.String())
		return parsed, err == nil && parsed >= 1
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		return parsed, err == nil && parsed >= 1
	default:
		return 0, false
	}
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
