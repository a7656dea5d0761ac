package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/repository/ports"
)

var ErrIndexUnavailable = errors.New("trip index unavailable")

// TripIndex keeps a full-text copy of each trip in elasticsearch. Queries are
// always filtered to the requesting user.
type TripIndex struct {
	es             *elasticsearch.Client
	index          string
	requestTimeout time.Duration
}

var _ ports.TripIndex = (*TripIndex)(nil)

func NewClient(addresses []string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
}

func NewTripIndex(es *elasticsearch.Client, index string, requestTimeout time.Duration) *TripIndex {
	return &TripIndex{es: es, index: index, requestTimeout: requestTimeout}
}

func (t *TripIndex) IndexTrip(ctx context.Context, doc domain.TripSearchDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	resp, err := t.es.Index(t.index, bytes.NewReader(payload),
		t.es.Index.WithContext(ctx),
		t.es.Index.WithDocumentID(doc.TripID.String()),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return fmt.Errorf("%w: index error: %s", ErrIndexUnavailable, resp.String())
	}
	return nil
}

// DeleteTrip ignores documents that were never indexed.
func (t *TripIndex) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	resp, err := t.es.Delete(t.index, tripID.String(), t.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.IsError() && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: delete error: %s", ErrIndexUnavailable, resp.String())
	}
	return nil
}

func (t *TripIndex) SearchTrips(ctx context.Context, userID uuid.UUID, query string, limit int) ([]domain.TripSearchHit, error) {
	body := map[string]any{
		"size":    limit,
		"_source": []string{"trip_id"},
		"query": map[string]any{
			"bool": map[string]any{
				"must": []map[string]any{{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"destination^3", "notes^2", "itinerary", "budget", "adventure"},
						"fuzziness": "AUTO",
					},
				}},
				"filter": []map[string]any{
					{"term": map[string]any{"user_id.keyword": userID.String()}},
				},
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	resp, err := t.es.Search(
		t.es.Search.WithContext(ctx),
		t.es.Search.WithIndex(t.index),
		t.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, fmt.Errorf("%w: search error: %s", ErrIndexUnavailable, resp.String())
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	return parseHits(data), nil
}

func parseHits(data []byte) []domain.TripSearchHit {
	hits := []domain.TripSearchHit{}
	gjson.GetBytes(data, "hits.hits").ForEach(func(_, hit gjson.Result) bool {
		raw := hit.Get("_source.trip_id").String()
		if raw == "" {
			raw = hit.Get("_id").String()
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return true
		}
		hits = append(hits, domain.TripSearchHit{TripID: id, Score: hit.Get("_score").Float()})
		return true
	})
	return hits
}

func (t *TripIndex) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.requestTimeout > 0 {
		return context.WithTimeout(ctx, t.requestTimeout)
	}
	return context.WithCancel(ctx)
}
