package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
	"github.com/tidwall/gjson"

	"github.com/njprem/TripPlanner_APP_BackEnd/internal/domain"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/gemini"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/itinerary"
	"github.com/njprem/TripPlanner_APP_BackEnd/internal/repository/ports"
)

const (
	defaultTripListLimit = 20
	maxTripListLimit     = 100
	maxTripExportRows    = 1000
	defaultExcerptLength = 160
	defaultSearchLimit   = 10
	completionTimeout    = 10 * time.Second
)

// TripGenerator produces itinerary text for a prompt.
type TripGenerator interface {
	Configured() bool
	Generate(ctx context.Context, prompt string) (*gemini.Result, error)
}

type TripServiceConfig struct {
	// GenerationTimeout bounds one whole generation including retries. Zero
	// leaves the generator's own per-attempt timeout in charge.
	GenerationTimeout time.Duration
	ExportBucket      string
	ExcerptLength     int
}

// TripView is a stored trip ready for display.
type TripView struct {
	Summary domain.TripSummary `json:"trip"`
	HTML    string             `json:"html,omitempty"`
}

type TripListResult struct {
	Items  []domain.TripSummary
	Total  int
	Limit  int
	Offset int
}

type TripSearchResult struct {
	Trip  domain.TripSummary `json:"trip"`
	Score float64            `json:"score"`
}

type TripService struct {
	trips     ports.TripRepository
	generator TripGenerator
	index     ports.TripIndex
	storage   ports.ObjectStorage

	generationTimeout time.Duration
	exportBucket      string
	excerptLength     int
	now               func() time.Time
}

// NewTripService wires the trip pipeline. index and storage may be nil, which
// disables search and HTML export.
func NewTripService(trips ports.TripRepository, generator TripGenerator, index ports.TripIndex, storage ports.ObjectStorage, cfg TripServiceConfig) *TripService {
	excerpt := cfg.ExcerptLength
	if excerpt <= 0 {
		excerpt = defaultExcerptLength
	}
	return &TripService{
		trips:             trips,
		generator:         generator,
		index:             index,
		storage:           storage,
		generationTimeout: cfg.GenerationTimeout,
		exportBucket:      cfg.ExportBucket,
		excerptLength:     excerpt,
		now:               time.Now,
	}
}

// Create validates the request, stores it as pending and runs generation.
// When generation fails the stored error trip is returned together with the
// error, so callers can show what was persisted.
func (s *TripService) Create(ctx context.Context, userID uuid.UUID, raw itinerary.RawTripRequest) (*TripView, error) {
	req := itinerary.NormalizeRequest(raw)
	if err := validateTripRequest(req); err != nil {
		return nil, err
	}
	return s.submit(ctx, userID, req)
}

// Regenerate submits the stored request of an existing trip again. The
// original trip is left untouched; a new trip is created.
func (s *TripService) Regenerate(ctx context.Context, userID, tripID uuid.UUID) (*TripView, error) {
	record, err := s.trips.Get(ctx, userID, tripID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	raw, err := storedRequest(record.Document)
	if err != nil {
		return nil, err
	}
	req := itinerary.NormalizeRequest(raw)
	if err := validateTripRequest(req); err != nil {
		return nil, err
	}
	return s.submit(ctx, userID, req)
}

func (s *TripService) submit(ctx context.Context, userID uuid.UUID, req domain.TripRequest) (*TripView, error) {
	if s.generator == nil || !s.generator.Configured() {
		return nil, gemini.ErrNotConfigured
	}

	now := s.now().UTC()
	req.CreatedAt = now
	doc, err := json.Marshal(domain.GeneratedTrip{
		Payload:   req,
		Status:    domain.TripStatusPending,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	record, err := s.trips.Create(ctx, userID, doc)
	if err != nil {
		return nil, err
	}

	genCtx := ctx
	if s.generationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.generationTimeout)
		defer cancel()
	}
	result, genErr := s.generator.Generate(genCtx, itinerary.BuildPrompt(req))

	// the outcome is written even if the caller has gone away
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completionTimeout)
	defer cancel()

	if genErr != nil {
		log.Printf("trip %s: generation failed: %v", record.ID, genErr)
		stored, err := s.complete(writeCtx, record, domain.TripStatusError, errorPatch(genErr, s.now().UTC()))
		if err != nil {
			return nil, errors.Join(genErr, err)
		}
		return s.view(stored), genErr
	}

	stored, err := s.complete(writeCtx, record, domain.TripStatusDone, map[string]any{
		"status":     domain.TripStatusDone,
		"aiResponse": result.Text,
		"raw":        result.Raw,
		"updatedAt":  s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	view := s.view(stored)
	s.indexTrip(writeCtx, stored, view.Summary)
	return view, nil
}

func (s *TripService) complete(ctx context.Context, record *domain.TripRecord, status domain.TripStatus, patch map[string]any) (*domain.TripRecord, error) {
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	stored, err := s.trips.Complete(ctx, record.UserID, record.ID, status, data)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotPending
		}
		return nil, err
	}
	return stored, nil
}

// errorPatch keeps upstream details in the stored document for operators; the
// "error" field only ever holds a message meant for users.
func errorPatch(err error, now time.Time) map[string]any {
	patch := map[string]any{
		"status":    domain.TripStatusError,
		"error":     generationMessage(err),
		"updatedAt": now,
	}
	var upstream *gemini.UpstreamError
	if errors.As(err, &upstream) {
		patch["errorStatus"] = upstream.Status
		patch["errorDetails"] = upstream.Details
	}
	return patch
}

func generationMessage(err error) string {
	var upstream *gemini.UpstreamError
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		return "Trip generation is not configured."
	case errors.As(err, &upstream):
		return fmt.Sprintf("The itinerary service returned an error (status %d).", upstream.Status)
	case errors.Is(err, gemini.ErrEmptyResponse):
		return "The itinerary service returned no itinerary."
	case errors.Is(err, context.DeadlineExceeded):
		return "Trip generation timed out."
	default:
		return "Trip generation failed."
	}
}

func (s *TripService) List(ctx context.Context, userID uuid.UUID, statuses []domain.TripStatus, limit, offset int) (*TripListResult, error) {
	if limit <= 0 {
		limit = defaultTripListLimit
	}
	if limit > maxTripListLimit {
		limit = maxTripListLimit
	}
	if offset < 0 {
		offset = 0
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", st)}
		}
	}
	filter := domain.TripFilter{Statuses: statuses, Limit: limit, Offset: offset}

	records, err := s.trips.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.trips.CountByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]domain.TripSummary, 0, len(records))
	for i := range records {
		items = append(items, s.listItem(&records[i]))
	}
	return &TripListResult{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *TripService) Get(ctx context.Context, userID, tripID uuid.UUID) (*TripView, error) {
	record, err := s.trips.Get(ctx, userID, tripID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return s.view(record), nil
}

// Delete removes the trip, its search entry and any exported page. Only the
// database delete can fail the call.
func (s *TripService) Delete(ctx context.Context, userID, tripID uuid.UUID) error {
	if err := s.trips.Delete(ctx, userID, tripID); err != nil {
		if isNotFound(err) {
			return ErrTripNotFound
		}
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteTrip(ctx, tripID); err != nil {
			log.Printf("trip %s: remove from search index failed: %v", tripID, err)
		}
	}
	if s.storage != nil && s.exportBucket != "" {
		if err := s.storage.Remove(ctx, s.exportBucket, exportObjectName(userID, tripID)); err != nil {
			log.Printf("trip %s: remove exported page failed: %v", tripID, err)
		}
	}
	return nil
}

type tripCSVRow struct {
	ID          string `csv:"id"`
	CreatedAt   string `csv:"created_at"`
	Destination string `csv:"destination"`
	Days        string `csv:"days"`
	Budget      string `csv:"budget"`
	Adventure   string `csv:"adventure"`
	Notes       string `csv:"notes"`
	Status      string `csv:"status"`
	Error       string `csv:"error"`
	Excerpt     string `csv:"excerpt"`
}

// ExportCSV renders the user's trip history, newest first.
func (s *TripService) ExportCSV(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	records, err := s.trips.ListByUser(ctx, userID, domain.TripFilter{Limit: maxTripExportRows})
	if err != nil {
		return nil, err
	}
	rows := make([]tripCSVRow, 0, len(records))
	for i := range records {
		item := s.listItem(&records[i])
		row := tripCSVRow{
			ID:          item.ID.String(),
			Destination: item.Destination,
			Days:        item.DaysLabel,
			Budget:      item.Budget,
			Adventure:   item.Adventure,
			Notes:       item.Notes,
			Status:      string(item.Status),
			Error:       item.Error,
			Excerpt:     item.Excerpt,
		}
		if !item.CreatedAt.IsZero() {
			row.CreatedAt = item.CreatedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		header, err := csvutil.Header(tripCSVRow{}, "csv")
		if err != nil {
			return nil, err
		}
		return []byte(strings.Join(header, ",") + "\n"), nil
	}
	return csvutil.Marshal(rows)
}

// ExportHTML uploads a standalone page for a finished trip and returns its
// URL. pageURL is embedded as the share link.
func (s *TripService) ExportHTML(ctx context.Context, userID, tripID uuid.UUID, pageURL string) (string, error) {
	if s.storage == nil || s.exportBucket == "" {
		return "", ErrExportUnavailable
	}
	view, err := s.Get(ctx, userID, tripID)
	if err != nil {
		return "", err
	}
	if !view.Summary.HasItinerary {
		return "", ErrTripIncomplete
	}
	page, err := itinerary.RenderPage(view.Summary, pageURL)
	if err != nil {
		return "", err
	}
	url, err := s.storage.Upload(ctx, s.exportBucket, exportObjectName(userID, tripID), "text/html; charset=utf-8", bytes.NewReader(page), int64(len(page)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExportUnavailable, err)
	}
	return url, nil
}

// Search runs a full-text query over the user's finished trips. Hits whose
// trip no longer exists are skipped.
func (s *TripService) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]TripSearchResult, error) {
	if s.index == nil {
		return nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Field: "q", Message: "search query required"}
	}
	if limit <= 0 || limit > maxTripListLimit {
		limit = defaultSearchLimit
	}

	hits, err := s.index.SearchTrips(ctx, userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	results := make([]TripSearchResult, 0, len(hits))
	for _, hit := range hits {
		record, err := s.trips.Get(ctx, userID, hit.TripID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		results = append(results, TripSearchResult{Trip: s.listItem(record), Score: hit.Score})
	}
	return results, nil
}

func (s *TripService) indexTrip(ctx context.Context, record *domain.TripRecord, summary domain.TripSummary) {
	if s.index == nil {
		return
	}
	doc := domain.TripSearchDocument{
		TripID:      record.ID,
		UserID:      record.UserID,
		Destination: summary.Destination,
		Budget:      summary.Budget,
		Adventure:   summary.Adventure,
		Notes:       summary.Notes,
		Itinerary:   summary.Itinerary,
		Status:      summary.Status,
		CreatedAt:   summary.CreatedAt,
	}
	if err := s.index.IndexTrip(ctx, doc); err != nil {
		log.Printf("trip %s: index failed: %v", record.ID, err)
	}
}

func (s *TripService) view(record *domain.TripRecord) *TripView {
	summary := summarizeRecord(record)
	view := &TripView{Summary: summary}
	if summary.HasItinerary {
		view.HTML = itinerary.RenderMarkdown(summary.Itinerary)
	}
	return view
}

func (s *TripService) listItem(record *domain.TripRecord) domain.TripSummary {
	summary := summarizeRecord(record)
	if summary.HasItinerary {
		summary.Excerpt = itinerary.Excerpt(summary.Itinerary, s.excerptLength)
	}
	summary.Itinerary = ""
	return summary
}

// summarizeRecord decodes the document and lets the row's own columns win
// over whatever the document claims.
func summarizeRecord(record *domain.TripRecord) domain.TripSummary {
	summary := itinerary.Summarize(record.Document)
	summary.ID = record.ID
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = record.CreatedAt
	}
	if record.Status.Valid() && record.Status != summary.Status {
		summary.Status = record.Status
		switch {
		case record.Status != domain.TripStatusError:
			summary.Error = ""
		case summary.Error == "":
			summary.Error = "Generation failed"
		}
	}
	return summary
}

func validateTripRequest(req domain.TripRequest) error {
	switch {
	case req.Destination == nil || req.Destination.Label == "":
		return &ValidationError{Field: "destination", Message: "destination is required"}
	case req.Days < 1 || req.Days > domain.MaxTripDays:
		return &ValidationError{Field: "days", Message: fmt.Sprintf("days must be between 1 and %d", domain.MaxTripDays)}
	case !req.Budget.Valid():
		return &ValidationError{Field: "budget", Message: "budget must be one of cheap, moderate, luxury"}
	case !req.Adventure.Valid():
		return &ValidationError{Field: "adventure", Message: "adventure must be one of solo, couple, family, friends"}
	}
	return nil
}

// storedRequest rebuilds the submitted form from a stored document of any
// layout: fields under "payload" or at the top level.
func storedRequest(doc domain.Document) (itinerary.RawTripRequest, error) {
	if !gjson.ValidBytes(doc) {
		return itinerary.RawTripRequest{}, &ValidationError{Field: "trip", Message: "stored trip is unreadable"}
	}
	root := gjson.ParseBytes(doc)
	source := root
	if payload := root.Get("payload"); payload.IsObject() {
		source = payload
	}

	raw := itinerary.RawTripRequest{
		Budget:    source.Get("budget").String(),
		Adventure: source.Get("adventure").String(),
		Notes:     source.Get("notes").String(),
	}
	if days := source.Get("days"); days.Exists() {
		raw.Days = days.Value()
	}
	switch dest := source.Get("destination"); {
	case dest.IsObject():
		if m, ok := dest.Value().(map[string]any); ok {
			raw.Destination = m
		}
	case dest.Type == gjson.String:
		raw.Destination = map[string]any{"label": dest.Str}
	}
	return raw, nil
}

func exportObjectName(userID, tripID uuid.UUID) string {
	return fmt.Sprintf("itineraries/%s/%s.html", userID, tripID)
}
