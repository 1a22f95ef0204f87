package pokedex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pokedexapi/pkg/cache"
	"pokedexapi/pkg/logging"
)

// Cache keys for the shared collection artifacts. Detail records key by
// normalized identifier under detailKeyPrefix.
const (
	summaryKey      = "pokedex_summary_data"
	generationsKey  = "generations_data"
	typesKey        = "types_data"
	detailKeyPrefix = "pokemon_detail_"
)

// Refresh artifact names accepted by Refresh.
const (
	ArtifactSummary     = "summary"
	ArtifactGenerations = "generations"
	ArtifactTypes       = "types"
	ArtifactAll         = "all"
)

func detailKey(ident string) string {
	return detailKeyPrefix + ident
}

// normalizeIdent canonicalizes a Pokémon identifier so equivalent
// requests share one cache entry. Numeric IDs and names stay distinct.
func normalizeIdent(ident string) string {
	return strings.ToLower(strings.TrimSpace(ident))
}

// ServiceConfig tunes the service facade.
type ServiceConfig struct {
	// CacheTTL is the lifetime of every cached record. Defaults to 24h.
	CacheTTL time.Duration
}

// RefreshResult reports what a refresh run produced.
type RefreshResult struct {
	Artifact string         `json:"artifact"`
	Counts   map[string]int `json:"counts"`
}

// Service is the cache-backed facade the API serves from. It is the only
// component that touches the Store: reads validate before serving, writes
// serialize validated records, and full rebuilds run under the refresh
// coordinator.
type Service struct {
	store      cache.Store
	aggregator *Aggregator
	builder    *Builder
	coord      *Coordinator
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// NewService creates the facade. Panics if any dependency is nil.
func NewService(store cache.Store, aggregator *Aggregator, builder *Builder, cfg ServiceConfig) *Service {
	if store == nil {
		panic("pokedex: nil store")
	}
	if aggregator == nil {
		panic("pokedex: nil aggregator")
	}
	if builder == nil {
		panic("pokedex: nil builder")
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		store:      store,
		aggregator: aggregator,
		builder:    builder,
		coord:      &Coordinator{},
		cacheTTL:   ttl,
		logger:     logging.NewLogger("pokedex-service"),
	}
}

// Refreshing reports whether a full refresh run is in progress. The API
// layer uses it to answer busy on data endpoints during a refresh.
func (s *Service) Refreshing() bool {
	return s.coord.Refreshing()
}

// StoreHealthy reports whether the cache backend currently answers reads.
func (s *Service) StoreHealthy(ctx context.Context) bool {
	_, _, err := s.store.Get(ctx, summaryKey)
	return err == nil
}

// GetSummaries returns the full Pokédex summary list. A cache miss or
// force triggers a full-corpus build under the refresh coordinator.
func (s *Service) GetSummaries(ctx context.Context, force bool) ([]Summary, error) {
	if !force {
		if cached, ok := readCached[[]Summary](ctx, s, summaryKey, validateSummaries); ok {
			return *cached, nil
		}
	}

	var summaries []Summary
	err := s.runGuarded(ctx, ArtifactSummary, func(ctx context.Context) error {
		var err error
		summaries, err = s.buildSummaries(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetDetail returns one Pokémon's detail record, aggregating upstream on
// a miss. force bypasses the cache read. Per-entity aggregation is not a
// full refresh and does not take the coordinator slot.
func (s *Service) GetDetail(ctx context.Context, ident string, force bool) (*Detail, error) {
	ident = normalizeIdent(ident)
	if ident == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrNotFound)
	}

	key := detailKey(ident)
	if !force {
		if cached, ok := readCached[Detail](ctx, s, key, (*Detail).Validate); ok {
			return cached, nil
		}
	}

	detail, err := s.aggregator.AggregateDetail(ctx, ident)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, key, detail)
	return detail, nil
}

// GetGenerations returns the generation collection, rebuilding it on a
// miss or force. Counts come from the cached summary list when present.
func (s *Service) GetGenerations(ctx context.Context, force bool) ([]Generation, error) {
	if !force {
		if cached, ok := readCached[[]Generation](ctx, s, generationsKey, validateGenerations); ok {
			return *cached, nil
		}
	}

	var generations []Generation
	err := s.runGuarded(ctx, ArtifactGenerations, func(ctx context.Context) error {
		var err error
		generations, err = s.buildGenerations(ctx, s.cachedSummaries(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}
	return generations, nil
}

// GetTypes returns the type collection, rebuilding it on a miss or force.
func (s *Service) GetTypes(ctx context.Context, force bool) ([]TypeInfo, error) {
	if !force {
		if cached, ok := readCached[[]TypeInfo](ctx, s, typesKey, validateTypes); ok {
			return *cached, nil
		}
	}

	var types []TypeInfo
	err := s.runGuarded(ctx, ArtifactTypes, func(ctx context.Context) error {
		var err error
		types, err = s.buildTypes(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return types, nil
}

// Refresh rebuilds the named artifact and stores it. Returns
// ErrUnknownArtifact for unrecognized names and ErrRefreshConflict when a
// refresh is already running. "all" rebuilds summary, generations and
// types in one coordinated run, feeding the fresh summaries into the
// generation counts.
func (s *Service) Refresh(ctx context.Context, artifact string) (*RefreshResult, error) {
	result := &RefreshResult{Artifact: artifact, Counts: make(map[string]int)}

	var fn func(context.Context) error
	switch artifact {
	case ArtifactSummary:
		fn = func(ctx context.Context) error {
			summaries, err := s.buildSummaries(ctx)
			if err != nil {
				return err
			}
			result.Counts[ArtifactSummary] = len(summaries)
			return nil
		}
	case ArtifactGenerations:
		fn = func(ctx context.Context) error {
			generations, err := s.buildGenerations(ctx, s.cachedSummaries(ctx))
			if err != nil {
				return err
			}
			result.Counts[ArtifactGenerations] = len(generations)
			return nil
		}
	case ArtifactTypes:
		fn = func(ctx context.Context) error {
			types, err := s.buildTypes(ctx)
			if err != nil {
				return err
			}
			result.Counts[ArtifactTypes] = len(types)
			return nil
		}
	case ArtifactAll:
		fn = func(ctx context.Context) error {
			summaries, err := s.buildSummaries(ctx)
			if err != nil {
				return err
			}
			result.Counts[ArtifactSummary] = len(summaries)

			generations, err := s.buildGenerations(ctx, summaries)
			if err != nil {
				return err
			}
			result.Counts[ArtifactGenerations] = len(generations)

			types, err := s.buildTypes(ctx)
			if err != nil {
				return err
			}
			result.Counts[ArtifactTypes] = len(types)
			return nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, artifact)
	}

	if err := s.runGuarded(ctx, artifact, fn); err != nil {
		return nil, err
	}
	return result, nil
}

// EnsureWarm populates all artifacts when the summary cache is absent,
// typically at startup. A warm cache is left untouched.
func (s *Service) EnsureWarm(ctx context.Context) error {
	if _, found, err := s.store.Get(ctx, summaryKey); err == nil && found {
		s.logger.Info().Msg("Cache already warm, skipping startup refresh")
		return nil
	}
	s.logger.Info().Msg("Cache cold, running startup refresh")
	_, err := s.Refresh(ctx, ArtifactAll)
	return err
}

// runGuarded runs one refresh under the coordinator slot, recording run
// metrics per artifact.
func (s *Service) runGuarded(ctx context.Context, artifact string, fn func(context.Context) error) error {
	if !s.coord.Begin() {
		refreshRunsTotal.WithLabelValues(artifact, runConflict).Inc()
		return ErrRefreshConflict
	}
	defer s.coord.End()

	start := time.Now()
	err := fn(ctx)
	refreshDuration.WithLabelValues(artifact).Observe(time.Since(start).Seconds())
	if err != nil {
		refreshRunsTotal.WithLabelValues(artifact, runFailure).Inc()
		s.logger.Error().Err(err).Str("artifact", artifact).Msg("Refresh run failed")
		return err
	}
	refreshRunsTotal.WithLabelValues(artifact, runSuccess).Inc()
	s.logger.Info().Str("artifact", artifact).Dur("elapsed", time.Since(start)).Msg("Refresh run complete")
	return nil
}

// buildSummaries rebuilds and stores the summary collection.
func (s *Service) buildSummaries(ctx context.Context) ([]Summary, error) {
	summaries, err := s.builder.BuildSummaryList(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, summaryKey, summaries)
	return summaries, nil
}

// buildGenerations rebuilds and stores the generation collection.
func (s *Service) buildGenerations(ctx context.Context, summaries []Summary) ([]Generation, error) {
	generations, err := s.builder.BuildGenerationList(ctx, summaries)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, generationsKey, generations)
	return generations, nil
}

// buildTypes rebuilds and stores the type collection.
func (s *Service) buildTypes(ctx context.Context) ([]TypeInfo, error) {
	types, err := s.builder.BuildTypeList(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCached(ctx, typesKey, types)
	return types, nil
}

// cachedSummaries returns the cached summary list when present and valid,
// without triggering a build. Used as the count source for generation
// rebuilds.
func (s *Service) cachedSummaries(ctx context.Context) []Summary {
	if cached, ok := readCached[[]Summary](ctx, s, summaryKey, validateSummaries); ok {
		return *cached
	}
	return nil
}

// readCached decodes and validates one cached artifact. Corrupt entries
// (undecodable or failing validation) are deleted and reported as a miss
// so the caller aggregates fresh data.
func readCached[T any](ctx context.Context, s *Service, key string, validate func(*T) error) (*T, bool) {
	data, found, err := s.store.Get(ctx, key)
	if err != nil || !found {
		return nil, false
	}

	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		s.dropCorrupt(ctx, key, err)
		return nil, false
	}
	if err := validate(&record); err != nil {
		s.dropCorrupt(ctx, key, err)
		return nil, false
	}
	return &record, true
}

func (s *Service) dropCorrupt(ctx context.Context, key string, cause error) {
	cacheCorruptTotal.Inc()
	s.logger.Warn().Err(cause).Str("key", key).Msg("Dropping corrupt cache entry")
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete corrupt cache entry")
	}
}

// writeCached stores one artifact. Cache write failures degrade to
// serving uncached rather than failing the request.
func (s *Service) writeCached(ctx context.Context, key string, record any) bool {
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to encode record for cache")
		return false
	}
	if err := s.store.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed, serving uncached")
		return false
	}
	return true
}

func validateSummaries(list *[]Summary) error {
	if len(*list) == 0 {
		return errors.New("empty summary list")
	}
	for i := range *list {
		if err := (*list)[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func validateGenerations(list *[]Generation) error {
	if len(*list) == 0 {
		return errors.New("empty generation list")
	}
	for i := range *list {
		if err := (*list)[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func validateTypes(list *[]TypeInfo) error {
	if len(*list) == 0 {
		return errors.New("empty type list")
	}
	for i := range *list {
		if err := (*list)[i].Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}
