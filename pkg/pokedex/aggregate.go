package pokedex

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"pokedexapi/pkg/logging"
	"pokedexapi/pkg/pokeapi"
)

// Upstream is the slice of the PokeAPI client the aggregation layer
// depends on. *pokeapi.Client satisfies it.
type Upstream interface {
	Pokemon(ctx context.Context, ident string) (*pokeapi.Pokemon, error)
	Species(ctx context.Context, ident string) (*pokeapi.Species, error)
	Generation(ctx context.Context, ident string) (*pokeapi.Generation, error)
	EvolutionChain(ctx context.Context, id int) (*pokeapi.EvolutionChain, error)
	Generations(ctx context.Context) (*pokeapi.ResourceList, error)
	Types(ctx context.Context) (*pokeapi.ResourceList, error)
}

// Aggregator combines PokeAPI payloads into validated records. The base
// and species fetches are required; evolution chain and generation
// lookups are optional and degrade per field when they fail.
type Aggregator struct {
	upstream Upstream
	sprites  SpriteOptions
	logger   zerolog.Logger
}

// NewAggregator creates an Aggregator. Panics if upstream is nil.
func NewAggregator(upstream Upstream, sprites SpriteOptions) *Aggregator {
	if upstream == nil {
		panic("pokedex: nil upstream")
	}
	return &Aggregator{
		upstream: upstream,
		sprites:  sprites,
		logger:   logging.NewLogger("pokedex-service"),
	}
}

// resourceIdent prefers the numeric ID from a resource URL over its name,
// so follow-up fetches stay stable across upstream renames.
func resourceIdent(res pokeapi.NamedResource) string {
	if id, err := res.ID(); err == nil {
		return strconv.Itoa(id)
	}
	return res.Name
}

// AggregateDetail builds the full detail record for one Pokémon.
// Returns ErrNotFound when the identifier is unknown upstream and
// ErrUpstream when a required fetch fails.
func (a *Aggregator) AggregateDetail(ctx context.Context, ident string) (*Detail, error) {
	base, err := a.upstream.Pokemon(ctx, ident)
	if err != nil {
		return nil, a.baseFetchError("detail", ident, err)
	}

	species, err := a.fetchSpecies(ctx, base)
	if err != nil {
		aggregationsTotal.WithLabelValues("detail", outcomeUpstreamError).Inc()
		return nil, err
	}

	detail := &Detail{
		ID:             base.ID,
		Name:           base.Name,
		Genus:          englishGenus(species.Genera),
		Description:    englishDescription(species.FlavorTextEntries),
		Types:          typeList(base.Types),
		Abilities:      abilityList(base.Abilities),
		Height:         base.Height,
		Weight:         base.Weight,
		BaseExperience: base.BaseExperience,
		Stats:          statList(base.Stats),
		Sprites:        spriteSetFrom(base.Sprites, a.sprites),
		CaptureRate:    species.CaptureRate,
		BaseHappiness:  species.BaseHappiness,
		GenderRatio:    genderRatio(species.GenderRate),
		HatchSteps:     hatchSteps(species.HatchCounter),
		EggGroups:      eggGroupNames(species.EggGroups),
		IsLegendary:    species.IsLegendary,
		IsMythical:     species.IsMythical,
		IsBaby:         species.IsBaby,
	}
	if species.EvolvesFromSpecies != nil {
		detail.EvolvesFrom = species.EvolvesFromSpecies.Name
	}
	if species.Habitat != nil {
		detail.Habitat = species.Habitat.Name
	}
	if species.Shape != nil {
		detail.Shape = species.Shape.Name
	}
	if species.GrowthRate != nil {
		detail.GrowthRate = species.GrowthRate.Name
	}

	a.applyGeneration(ctx, detail, species)
	a.applyEvolution(ctx, detail, species)

	if err := detail.Validate(); err != nil {
		aggregationsTotal.WithLabelValues("detail", outcomeInvalid).Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	aggregationsTotal.WithLabelValues("detail", outcomeSuccess).Inc()
	return detail, nil
}

// AggregateSummary builds the summary record for one Pokémon from the
// base and species payloads alone. The generation ID is derived from the
// species' generation name without a follow-up fetch.
func (a *Aggregator) AggregateSummary(ctx context.Context, ident string) (*Summary, error) {
	base, err := a.upstream.Pokemon(ctx, ident)
	if err != nil {
		return nil, a.baseFetchError("summary", ident, err)
	}

	species, err := a.fetchSpecies(ctx, base)
	if err != nil {
		aggregationsTotal.WithLabelValues("summary", outcomeUpstreamError).Inc()
		return nil, err
	}

	summary := &Summary{
		ID:           base.ID,
		Name:         base.Name,
		GenerationID: generationIDFromName(species.Generation.Name),
		Types:        typeList(base.Types),
		SpriteURL:    a.sprites.rewrite(base.Sprites.FrontDefault),
		IsLegendary:  species.IsLegendary,
		IsMythical:   species.IsMythical,
		IsBaby:       species.IsBaby,
	}
	if err := summary.Validate(); err != nil {
		aggregationsTotal.WithLabelValues("summary", outcomeInvalid).Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	aggregationsTotal.WithLabelValues("summary", outcomeSuccess).Inc()
	return summary, nil
}

// AggregateGeneration builds one generation record. PokemonCount is left
// zero; the collection builder fills it from the summary list.
func (a *Aggregator) AggregateGeneration(ctx context.Context, ident string) (*Generation, error) {
	gen, err := a.upstream.Generation(ctx, ident)
	if err != nil {
		return nil, a.baseFetchError("generation", ident, err)
	}

	record := &Generation{
		ID:         gen.ID,
		Name:       gen.Name,
		RegionName: gen.MainRegion.Name,
	}
	if record.RegionName == "" {
		record.RegionName = unknownRegion
	}
	if err := record.Validate(); err != nil {
		aggregationsTotal.WithLabelValues("generation", outcomeInvalid).Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	aggregationsTotal.WithLabelValues("generation", outcomeSuccess).Inc()
	return record, nil
}

// baseFetchError maps a failed required fetch onto the package sentinels
// and records the aggregation outcome.
func (a *Aggregator) baseFetchError(kind, ident string, err error) error {
	if errors.Is(err, pokeapi.ErrNotFound) {
		aggregationsTotal.WithLabelValues(kind, outcomeNotFound).Inc()
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, ident)
	}
	aggregationsTotal.WithLabelValues(kind, outcomeUpstreamError).Inc()
	return fmt.Errorf("%w: fetch %s %q: %v", ErrUpstream, kind, ident, err)
}

// fetchSpecies resolves the species referenced by a base payload. Forms
// such as "deoxys-normal" resolve through the payload's species link, not
// the requested identifier, so the fetch goes by that reference.
func (a *Aggregator) fetchSpecies(ctx context.Context, base *pokeapi.Pokemon) (*pokeapi.Species, error) {
	species, err := a.upstream.Species(ctx, resourceIdent(base.Species))
	if err != nil {
		return nil, fmt.Errorf("%w: fetch species for %q: %v", ErrUpstream, base.Name, err)
	}
	return species, nil
}

// applyGeneration resolves the numeric generation ID and region name via
// a generation fetch. The fetch is optional: on failure the ID falls back
// to the generation name and the region degrades to "unknown".
func (a *Aggregator) applyGeneration(ctx context.Context, d *Detail, species *pokeapi.Species) {
	if species.Generation.Name != "" || species.Generation.URL != "" {
		gen, err := a.upstream.Generation(ctx, resourceIdent(species.Generation))
		if err == nil {
			d.GenerationID = gen.ID
			d.RegionName = gen.MainRegion.Name
			if d.RegionName == "" {
				d.RegionName = unknownRegion
			}
			return
		}
		a.logger.Warn().
			Err(err).
			Str("pokemon", d.Name).
			Str("generation", species.Generation.Name).
			Msg("Generation lookup failed, serving degraded region")
		degradedFieldsTotal.WithLabelValues("generation").Inc()
	}
	d.GenerationID = generationIDFromName(species.Generation.Name)
	d.RegionName = unknownRegion
}

// applyEvolution attaches the evolution tree. The chain fetch is
// optional: on failure the detail ships without evolution data.
func (a *Aggregator) applyEvolution(ctx context.Context, d *Detail, species *pokeapi.Species) {
	chainURL := species.EvolutionChain.URL
	if chainURL == "" {
		return
	}
	id, err := pokeapi.IDFromURL(chainURL)
	if err != nil {
		a.logger.Warn().
			Err(err).
			Str("pokemon", d.Name).
			Str("chain_url", chainURL).
			Msg("Evolution chain reference unparseable, serving without evolution")
		degradedFieldsTotal.WithLabelValues("evolution").Inc()
		return
	}
	chain, err := a.upstream.EvolutionChain(ctx, id)
	if err != nil {
		a.logger.Warn().
			Err(err).
			Str("pokemon", d.Name).
			Int("chain_id", id).
			Msg("Evolution chain fetch failed, serving without evolution")
		degradedFieldsTotal.WithLabelValues("evolution").Inc()
		return
	}
	d.Evolution = evolutionTree(chain.Chain)
}
