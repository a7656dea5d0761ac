package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/itinerary"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "TripPlanner/1.0"

	// MinQueryLength is the shortest query that is sent upstream.
	MinQueryLength = 2
	MaxResults     = 6

	upstreamLimit    = 12
	defaultCacheTTL  = 10 * time.Minute
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 2 << 20
)

var ErrUpstream = errors.New("place search unavailable")

var (
	cityKeys            = []string{"city", "town", "village", "municipality", "county", "state"}
	administrativeTypes = []string{"city", "town", "village", "municipality", "county", "administrative"}
	placeClasses        = []string{"place", "boundary", "admin"}
)

type Config struct {
	BaseURL    string
	UserAgent  string
	CacheTTL   time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client searches Nominatim for city-like places. Results are cached per
// case-folded query.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	cache     *cache.Cache
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		timeout:   timeout,
		http:      httpClient,
		cache:     cache.New(ttl, 2*ttl),
	}
}

// Search returns up to MaxResults destinations whose labels read
// "City, State, Country". Queries shorter than MinQueryLength return nothing
// without calling upstream.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Destination, error) {
	query = strings.Join(strings.Fields(query), " ")
	if len([]rune(query)) < MinQueryLength {
		return []domain.Destination{}, nil
	}

	key := foldKey(query)
	if cached, found := c.cache.Get(key); found {
		return cached.([]domain.Destination), nil
	}

	body, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	results := cityResults(body)
	c.cache.Set(key, results, cache.DefaultExpiration)
	return results, nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", fmt.Sprint(upstreamLimit))
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsArray() {
		return nil, fmt.Errorf("%w: unexpected response body", ErrUpstream)
	}
	return data, nil
}

// cityResults drops points of interest that carry no city-like name, builds
// canonical labels and removes duplicates.
func cityResults(body []byte) []domain.Destination {
	var candidates []domain.Destination
	gjson.ParseBytes(body).ForEach(func(_, p gjson.Result) bool {
		if dest, ok := toDestination(p); ok {
			candidates = append(candidates, dest)
		}
		return true
	})

	unique := lo.UniqBy(candidates, func(d domain.Destination) string {
		return foldKey(d.Label)
	})
	if len(unique) > MaxResults {
		unique = unique[:MaxResults]
	}
	if unique == nil {
		return []domain.Destination{}
	}
	return unique
}

func toDestination(p gjson.Result) (domain.Destination, bool) {
	address := map[string]string{}
	p.Get("address").ForEach(func(k, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			address[k.String()] = s
		}
		return true
	})

	placeType := strings.ToLower(p.Get("type").String())
	placeClass := strings.ToLower(p.Get("class").String())
	cityName, hasCity := lo.Find(lo.Map(cityKeys, func(k string, _ int) string { return address[k] }), func(s string) bool {
		return s != ""
	})
	if !hasCity && !lo.Contains(administrativeTypes, placeType) && !lo.Contains(placeClasses, placeClass) {
		return domain.Destination{}, false
	}

	displayName := strings.TrimSpace(p.Get("display_name").String())
	label := strings.TrimSpace(strings.Split(displayName, ",")[0])
	if hasCity {
		parts := lo.Uniq(lo.Compact([]string{cityName, address["state"], address["country"]}))
		label = strings.Join(parts, ", ")
	}
	if label == "" {
		return domain.Destination{}, false
	}

	place := domain.Place{
		PlaceID:     p.Get("place_id").String(),
		DisplayName: displayName,
	}
	if len(address) > 0 {
		place.Address = address
	}
	if lat, lon := itinerary.NormalizeCoordinates(p.Get("lat").String(), p.Get("lon").String()); lat != nil {
		lng := *lon
		place.Lat, place.Lon, place.Lng = lat, lon, &lng
	}
	return domain.Destination{Label: label, Value: place}, true
}

// foldKey builds a case-insensitive key. Casers keep state, so one is made
// per call.
func foldKey(s string) string {
	return cases.Fold().String(s)
}
