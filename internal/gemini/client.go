package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"

	apiVersion             = "v1beta"
	defaultTemperature     = 0.7
	defaultTopP            = 0.95
	defaultMaxOutputTokens = 4096
	defaultTimeout         = 60 * time.Second
	defaultRetryBackoff    = 2 * time.Second
	maxRetryBackoff        = 2 * time.Minute
	maxResponseBytes       = 4 << 20
)

type Config struct {
	APIKey          string
	Model           string
	BaseURL         string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	Timeout         time.Duration
	// MaxRetries is the number of extra attempts after a transport failure or
	// a 429/5xx answer. Zero disables retries; every attempt is billed.
	MaxRetries   int
	RetryBackoff time.Duration
	HTTPClient   *http.Client
}

// Result is the outcome of a successful generation. Raw is the upstream body
// as received, kept so text can be re-extracted later.
type Result struct {
	Text     string
	Raw      json.RawMessage
	Shape    string
	Attempts int
}

type Client struct {
	sdk        *genai.Client
	model      string
	generation *genai.GenerateContentConfig
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
}

// NewClient builds a client on top of the genai SDK. Without an API key the
// SDK client is not created and Generate answers ErrNotConfigured.
func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	topP := cfg.TopP
	if topP <= 0 {
		topP = defaultTopP
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	c := &Client{
		model: model,
		generation: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(temperature)),
			TopP:            genai.Ptr(float32(topP)),
			MaxOutputTokens: int32(maxTokens),
		},
		timeout:    timeout,
		maxRetries: retries,
		backoff:    backoff,
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return c
	}
	sdk, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: capturingClient(cfg.HTTPClient),
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		log.Printf("gemini: create client: %v", err)
		return c
	}
	c.sdk = sdk
	return c
}

// Configured reports whether Generate can reach the network at all.
func (c *Client) Configured() bool {
	return c != nil && c.sdk != nil && c.model != ""
}

// Generate sends prompt to the generateContent endpoint and returns the
// generated text. Each attempt is bounded by the configured timeout.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, attempt); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
			}
			log.Printf("gemini: retrying generation (attempt %d of %d): %v", attempt+1, c.maxRetries+1, lastErr)
		}

		result, err := c.call(ctx, prompt)
		if err == nil {
			result.Attempts = attempt + 1
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil || !temporary(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) call(ctx context.Context, prompt string) (*Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	exchange := &capturedExchange{}
	callCtx = context.WithValue(callCtx, captureKey{}, exchange)

	resp, err := c.sdk.Models.GenerateContent(callCtx, c.model, genai.Text(prompt), c.generation)
	if exchange.status != 0 && (exchange.status < http.StatusOK || exchange.status >= http.StatusMultipleChoices) {
		return nil, &UpstreamError{Status: exchange.status, Details: string(exchange.body)}
	}
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code != 0 {
			return nil, &UpstreamError{Status: apiErr.Code, Details: apiErr.Message}
		}
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	text, shape := "", textShapes[0].name
	if resp != nil {
		text = resp.Text()
	}
	if strings.TrimSpace(text) == "" {
		var ok bool
		text, shape, ok = ExtractShape(exchange.body)
		if !ok {
			return nil, ErrEmptyResponse
		}
		log.Printf("gemini: text extracted from fallback shape %q", shape)
	}
	return &Result{Text: text, Raw: json.RawMessage(exchange.body), Shape: shape}, nil
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(retryDelay(c.backoff, attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryDelay doubles base for every attempt after the first, capped at
// maxRetryBackoff.
func retryDelay(base time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt && delay < maxRetryBackoff; i++ {
		delay *= 2
	}
	if delay <= 0 || delay > maxRetryBackoff {
		return maxRetryBackoff
	}
	return delay
}

func temporary(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Temporary()
	}
	return errors.Is(err, ErrGenerationFailed)
}

type captureKey struct{}

// capturedExchange holds the status and body of the last HTTP response seen
// for one call. The SDK only exposes decoded values, and the raw body is
// stored with the trip.
type capturedExchange struct {
	status int
	body   []byte
}

type capturingTransport struct {
	base http.RoundTripper
}

func (t capturingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	exchange, ok := req.Context().Value(captureKey{}).(*capturedExchange)
	if !ok {
		return resp, nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	exchange.status = resp.StatusCode
	exchange.body = data
	resp.Body = io.NopCloser(bytes.NewReader(data))
	resp.ContentLength = int64(len(data))
	return resp, nil
}

func capturingClient(base *http.Client) *http.Client {
	client := &http.Client{}
	if base != nil {
		copied := *base
		client = &copied
	}
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client.Transport = capturingTransport{base: transport}
	return client
}
