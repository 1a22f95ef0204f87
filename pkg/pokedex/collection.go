package pokedex

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pokedexapi/pkg/logging"
)

// BuilderConfig tunes full collection builds.
type BuilderConfig struct {
	// MaxPokemonID is the highest Pokémon ID included in a summary build.
	MaxPokemonID int

	// BatchSize is the number of IDs aggregated per batch.
	BatchSize int

	// BatchPause is the pause between batches, throttling upstream load.
	BatchPause time.Duration

	// Concurrency is the number of workers aggregating within a batch.
	Concurrency int
}

// DefaultBuilderConfig returns the builder defaults: the full National
// Pokédex in batches of 50, eight workers, half a second between batches.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		MaxPokemonID: 1025,
		BatchSize:    50,
		BatchPause:   500 * time.Millisecond,
		Concurrency:  8,
	}
}

// Builder assembles the full summary, generation and type collections
// from per-entity aggregations and upstream enumerations.
type Builder struct {
	aggregator *Aggregator
	upstream   Upstream
	config     BuilderConfig
	logger     zerolog.Logger
}

// NewBuilder creates a Builder on top of an Aggregator. Zero config
// fields fall back to the defaults. Panics if aggregator is nil.
func NewBuilder(aggregator *Aggregator, cfg BuilderConfig) *Builder {
	if aggregator == nil {
		panic("pokedex: nil aggregator")
	}
	defaults := DefaultBuilderConfig()
	if cfg.MaxPokemonID <= 0 {
		cfg.MaxPokemonID = defaults.MaxPokemonID
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.BatchPause <= 0 {
		cfg.BatchPause = defaults.BatchPause
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	return &Builder{
		aggregator: aggregator,
		upstream:   aggregator.upstream,
		config:     cfg,
		logger:     logging.NewLogger("collection-builder"),
	}
}

// BuildSummaryList aggregates IDs 1..MaxPokemonID into the full summary
// list, sorted by ID. Individual failures are skipped and logged; the
// build only fails when it yields no records at all or the context is
// cancelled.
func (b *Builder) BuildSummaryList(ctx context.Context) ([]Summary, error) {
	start := time.Now()
	summaries := make([]Summary, 0, b.config.MaxPokemonID)
	skipped := 0

	for lo := 1; lo <= b.config.MaxPokemonID; lo += b.config.BatchSize {
		hi := lo + b.config.BatchSize - 1
		if hi > b.config.MaxPokemonID {
			hi = b.config.MaxPokemonID
		}

		got, miss, err := b.buildBatch(ctx, lo, hi)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, got...)
		skipped += miss

		if hi < b.config.MaxPokemonID {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(b.config.BatchPause):
			}
		}
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: summary build skipped all %d ids", ErrBuildFailed, skipped)
	}
	b.logger.Info().
		Int("records", len(summaries)).
		Int("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("Summary build complete")
	return summaries, nil
}

// buildBatch aggregates one contiguous ID range with a bounded worker
// pool. Failed IDs are counted and logged, not propagated.
func (b *Builder) buildBatch(ctx context.Context, lo, hi int) ([]Summary, int, error) {
	var (
		mu      sync.Mutex
		got     []Summary
		skipped int
	)

	workers := b.config.Concurrency
	if span := hi - lo + 1; workers > span {
		workers = span
	}

	ids := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				summary, err := b.aggregator.AggregateSummary(ctx, strconv.Itoa(id))
				if err != nil {
					refreshSkippedTotal.Inc()
					b.logger.Warn().Err(err).Int("pokemon_id", id).Msg("Skipping pokemon in summary build")
					mu.Lock()
					skipped++
					mu.Unlock()
					continue
				}
				mu.Lock()
				got = append(got, *summary)
				mu.Unlock()
			}
		}()
	}

	var cancelled error
feed:
	for id := lo; id <= hi; id++ {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		case ids <- id:
		}
	}
	close(ids)
	wg.Wait()

	if cancelled != nil {
		return nil, 0, cancelled
	}
	return got, skipped, nil
}

// BuildGenerationList enumerates all generations and aggregates each one.
// Per-generation counts come from the summaries passed in; a nil slice
// yields zero counts. Entries whose aggregation fails degrade to a
// name-derived ID with an unknown region rather than failing the build.
func (b *Builder) BuildGenerationList(ctx context.Context, summaries []Summary) ([]Generation, error) {
	list, err := b.upstream.Generations(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate generations: %v", ErrUpstream, err)
	}

	counts := make(map[int]int)
	for _, s := range summaries {
		counts[s.GenerationID]++
	}

	generations := make([]Generation, 0, len(list.Results))
	for _, res := range list.Results {
		record, err := b.aggregator.AggregateGeneration(ctx, resourceIdent(res))
		if err != nil {
			b.logger.Warn().Err(err).Str("generation", res.Name).Msg("Generation aggregation failed, serving degraded entry")
			degradedFieldsTotal.WithLabelValues("generation").Inc()
			record = &Generation{
				ID:         generationIDFromName(res.Name),
				Name:       res.Name,
				RegionName: unknownRegion,
			}
		}
		record.PokemonCount = counts[record.ID]
		if err := record.Validate(); err != nil {
			b.logger.Warn().Err(err).Str("generation", res.Name).Msg("Dropping unservable generation entry")
			continue
		}
		generations = append(generations, *record)
	}

	sort.Slice(generations, func(i, j int) bool { return generations[i].ID < generations[j].ID })

	if len(generations) == 0 {
		return nil, fmt.Errorf("%w: generation build yielded no records", ErrBuildFailed)
	}
	return generations, nil
}

// BuildTypeList enumerates all Pokémon types in upstream order.
func (b *Builder) BuildTypeList(ctx context.Context) ([]TypeInfo, error) {
	list, err := b.upstream.Types(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate types: %v", ErrUpstream, err)
	}

	types := make([]TypeInfo, 0, len(list.Results))
	for _, res := range list.Results {
		if res.Name == "" {
			continue
		}
		types = append(types, TypeInfo{Name: res.Name})
	}

	if len(types) == 0 {
		return nil, fmt.Errorf("%w: type build yielded no records", ErrBuildFailed)
	}
	return types, nil
}
