// Package fetcher turns pagination parameters into pages of items by
// issuing GET requests against the item service through an injected
// transport.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/quickload/quickload/pkg/buffer"
	"github.com/quickload/quickload/pkg/query"
)

// Prometheus metrics for fetch operations.
var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickload_fetches_total",
		Help: "Total item service fetches by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quickload_fetch_duration_seconds",
		Help:    "Item service fetch duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	fetchItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quickload_fetch_items",
		Help:    "Number of items returned per fetch",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
)

// Doer issues a single HTTP request. *http.Client satisfies it; tests
// substitute counting or failing transports.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ExtractFunc pulls the item list out of a raw response body.
type ExtractFunc func(body []byte) ([]buffer.Item, error)

// ExhaustedFunc reports whether a raw response body signals that the
// service has no items beyond those returned.
type ExhaustedFunc func(body []byte) bool

// Page is the interpreted result of one fetch.
type Page struct {
	Items     []buffer.Item
	Exhausted bool

	// Raw is the response body the page was extracted from.
	Raw []byte
}

// Config holds the executor configuration.
type Config struct {
	// Endpoint is the item service URL (required).
	Endpoint string

	// Query holds static query parameters sent with every fetch, ahead
	// of the pagination state.
	Query query.Params

	// Client is the HTTP transport (default: http.Client with a 30s
	// timeout).
	Client Doer

	// Extract overrides the default "items" field extractor.
	Extract ExtractFunc

	// Exhausted overrides the default "exhausted" field predicate.
	Exhausted ExhaustedFunc

	// Logger for fetch diagnostics.
	Logger zerolog.Logger
}

// Executor issues fetches against the item service.
type Executor struct {
	endpoint  string
	query     query.Params
	client    Doer
	extract   ExtractFunc
	exhausted ExhaustedFunc
	logger    zerolog.Logger
}

// New creates a fetch executor.
func New(cfg Config) (*Executor, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Extract == nil {
		cfg.Extract = ExtractItemsField
	}
	if cfg.Exhausted == nil {
		cfg.Exhausted = ExhaustedField
	}
	return &Executor{
		endpoint:  cfg.Endpoint,
		query:     cfg.Query,
		client:    cfg.Client,
		extract:   cfg.Extract,
		exhausted: cfg.Exhausted,
		logger:    cfg.Logger,
	}, nil
}

// URL returns the request URL for the given pagination state: the static
// query parameters followed by the state, per the service's URL format.
func (e *Executor) URL(state query.Params) string {
	return query.BuildURL(e.endpoint, e.query, state)
}

// Fetch issues one GET for the given pagination state and interprets the
// response. Transport failures and non-2xx statuses return a *ServiceError;
// uninterpretable bodies return an error wrapping ErrContractViolation.
func (e *Executor) Fetch(ctx context.Context, state query.Params) (*Page, error) {
	url := e.URL(state)

	start := time.Now()
	defer func() {
		fetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fetchesTotal.WithLabelValues("error").Inc()
		return nil, &ServiceError{Class: ErrorClassTransport, Message: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	e.logger.Debug().Str("url", url).Msg("Fetching page")

	resp, err := e.client.Do(req)
	if err != nil {
		fetchesTotal.WithLabelValues("error").Inc()
		e.logger.Error().Err(err).Str("url", url).Msg("Fetch failed")
		return nil, &ServiceError{Class: ErrorClassTransport, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fetchesTotal.WithLabelValues("error").Inc()
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassTransport,
			Message:    "read response body",
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fetchesTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()
		e.logger.Warn().
			Str("url", url).
			Int("status", resp.StatusCode).
			Msg("Item service returned error status")
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassTransport,
			Message:    resp.Status,
		}
	}

	items, err := e.extract(body)
	if err != nil {
		fetchesTotal.WithLabelValues("contract_violation").Inc()
		e.logger.Error().Err(err).Str("url", url).Msg("Response extraction failed")
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassContract,
			Message:    "extract items",
			Err:        fmt.Errorf("%w: %v", ErrContractViolation, err),
		}
	}

	exhausted := e.exhausted(body)

	fetchesTotal.WithLabelValues("success").Inc()
	fetchItems.Observe(float64(len(items)))

	e.logger.Debug().
		Str("url", url).
		Int("items", len(items)).
		Bool("exhausted", exhausted).
		Msg("Page fetched")

	return &Page{Items: items, Exhausted: exhausted, Raw: body}, nil
}

// ExtractItemsField is the default extractor: it reads the conventional
// "items" array field. An absent or null field is a contract violation.
func ExtractItemsField(body []byte) ([]buffer.Item, error) {
	var envelope struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if envelope.Items == nil {
		return nil, fmt.Errorf(`response has no "items" field`)
	}
	return envelope.Items, nil
}

// ExhaustedField is the default exhaustion predicate: it reads the
// conventional "exhausted" boolean field. A body that cannot be decoded
// reads as not exhausted; the extractor already rejects such bodies.
func ExhaustedField(body []byte) bool {
	var envelope struct {
		Exhausted bool `json:"exhausted"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false
	}
	return envelope.Exhausted
}
