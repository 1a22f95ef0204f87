// Package pokeapi provides a typed HTTP client for the public PokeAPI with
// error classification and retry handling.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for upstream request operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_requests_total",
		Help: "Total PokeAPI requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokeapi_request_duration_seconds",
		Help:    "PokeAPI request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_errors_total",
		Help: "Total PokeAPI errors by class",
	}, []string{"class"})
)

// Endpoint labels for metrics. Identifiers are not part of the label so
// cardinality stays bounded.
const (
	endpointPokemon        = "pokemon"
	endpointSpecies        = "pokemon-species"
	endpointGeneration     = "generation"
	endpointEvolutionChain = "evolution-chain"
	endpointGenerationList = "generation-list"
	endpointTypeList       = "type-list"
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the PokeAPI root, e.g. "https://pokeapi.co/api/v2".
	BaseURL string

	// UserAgent identifies this service to the upstream API.
	UserAgent string

	// Timeout bounds each HTTP request including body read.
	Timeout time.Duration

	// HTTPClient overrides the default HTTP client (for testing).
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   "https://pokeapi.co/api/v2",
		UserAgent: userAgent,
		Timeout:   10 * time.Second,
	}
}

// Client is a typed PokeAPI client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new PokeAPI client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := log.With().Str("component", "pokeapi-client").Logger()

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Pokemon fetches /pokemon/{ident}. ident is a numeric ID or a name.
func (c *Client) Pokemon(ctx context.Context, ident string) (*Pokemon, error) {
	var out Pokemon
	if err := c.getJSON(ctx, endpointPokemon, "/pokemon/"+ident, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Species fetches /pokemon-species/{ident}. ident is a numeric ID or a
// species name - note that for Pokémon forms the species name can differ
// from the Pokémon name, so callers should use the species reference from
// the Pokemon payload.
func (c *Client) Species(ctx context.Context, ident string) (*Species, error) {
	var out Species
	if err := c.getJSON(ctx, endpointSpecies, "/pokemon-species/"+ident, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generation fetches /generation/{ident}. ident is a numeric ID or a name
// such as "generation-i".
func (c *Client) Generation(ctx context.Context, ident string) (*Generation, error) {
	var out Generation
	if err := c.getJSON(ctx, endpointGeneration, "/generation/"+ident, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EvolutionChain fetches /evolution-chain/{id}.
func (c *Client) EvolutionChain(ctx context.Context, id int) (*EvolutionChain, error) {
	var out EvolutionChain
	if err := c.getJSON(ctx, endpointEvolutionChain, "/evolution-chain/"+strconv.Itoa(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generations enumerates all generations.
func (c *Client) Generations(ctx context.Context) (*ResourceList, error) {
	var out ResourceList
	if err := c.getJSON(ctx, endpointGenerationList, "/generation?limit=100", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Types enumerates all Pokémon types.
func (c *Client) Types(ctx context.Context) (*ResourceList, error) {
	var out ResourceList
	if err := c.getJSON(ctx, endpointTypeList, "/type?limit=100", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON performs a GET request with retry and decodes the response body.
// This is the core request method that orchestrates error classification,
// retries, and metrics.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, out any) error {
	url := c.config.BaseURL + path

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", url).
		Msg("Executing PokeAPI request")

	var body []byte

	retryErr := retryWithBackoff(ctx, func() error {
		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return reqErr
		}
		defer resp.Body.Close()

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			errClass := classifyStatus(resp.StatusCode)
			errorsTotal.WithLabelValues(string(errClass)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status_code", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("PokeAPI request error")

			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Endpoint:   path,
				Message:    resp.Status,
			}
			if errClass == ErrorClassNotFound {
				apiErr.Err = ErrNotFound
			}
			return apiErr
		}

		var readErr error
		body, readErr = io.ReadAll(resp.Body)
		if readErr != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return fmt.Errorf("read response body: %w", readErr)
		}

		return nil
	}, classify)

	if retryErr != nil {
		return retryErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	return nil
}
