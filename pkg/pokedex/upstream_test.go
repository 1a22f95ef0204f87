package pokedex

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"pokedexapi/pkg/pokeapi"
)

// fakeUpstream serves canned payloads keyed by identifier and counts
// calls per endpoint. Missing entries answer like upstream 404s.
type fakeUpstream struct {
	mu    sync.Mutex
	calls map[string]int

	pokemon     map[string]*pokeapi.Pokemon
	species     map[string]*pokeapi.Species
	generations map[string]*pokeapi.Generation
	chains      map[int]*pokeapi.EvolutionChain
	genList     *pokeapi.ResourceList
	typeList    *pokeapi.ResourceList

	pokemonErr  map[string]error
	speciesErr  map[string]error
	genErr      error
	chainErr    error
	genListErr  error
	typeListErr error
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		calls:       make(map[string]int),
		pokemon:     make(map[string]*pokeapi.Pokemon),
		species:     make(map[string]*pokeapi.Species),
		generations: make(map[string]*pokeapi.Generation),
		chains:      make(map[int]*pokeapi.EvolutionChain),
		pokemonErr:  make(map[string]error),
		speciesErr:  make(map[string]error),
	}
}

func notFoundErr(endpoint string) error {
	return &pokeapi.APIError{
		StatusCode: 404,
		ErrorClass: pokeapi.ErrorClassNotFound,
		Endpoint:   endpoint,
		Message:    "not found",
		Err:        pokeapi.ErrNotFound,
	}
}

func serverErr(endpoint string) error {
	return &pokeapi.APIError{
		StatusCode: 500,
		ErrorClass: pokeapi.ErrorClassServer,
		Endpoint:   endpoint,
		Message:    "internal server error",
	}
}

func (f *fakeUpstream) count(endpoint string) {
	f.mu.Lock()
	f.calls[endpoint]++
	f.mu.Unlock()
}

func (f *fakeUpstream) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// register stores a Pokémon and its species under both name and numeric
// ID, matching how upstream resolves either identifier.
func (f *fakeUpstream) register(p *pokeapi.Pokemon, s *pokeapi.Species) {
	f.pokemon[p.Name] = p
	f.pokemon[strconv.Itoa(p.ID)] = p
	f.species[s.Name] = s
	f.species[strconv.Itoa(s.ID)] = s
}

func (f *fakeUpstream) registerGeneration(g *pokeapi.Generation) {
	f.generations[g.Name] = g
	f.generations[strconv.Itoa(g.ID)] = g
}

func (f *fakeUpstream) Pokemon(ctx context.Context, ident string) (*pokeapi.Pokemon, error) {
	f.count("pokemon")
	if err := f.pokemonErr[ident]; err != nil {
		return nil, err
	}
	p, ok := f.pokemon[ident]
	if !ok {
		return nil, notFoundErr("pokemon")
	}
	return p, nil
}

func (f *fakeUpstream) Species(ctx context.Context, ident string) (*pokeapi.Species, error) {
	f.count("species")
	if err := f.speciesErr[ident]; err != nil {
		return nil, err
	}
	s, ok := f.species[ident]
	if !ok {
		return nil, notFoundErr("pokemon-species")
	}
	return s, nil
}

func (f *fakeUpstream) Generation(ctx context.Context, ident string) (*pokeapi.Generation, error) {
	f.count("generation")
	if f.genErr != nil {
		return nil, f.genErr
	}
	g, ok := f.generations[ident]
	if !ok {
		return nil, notFoundErr("generation")
	}
	return g, nil
}

func (f *fakeUpstream) EvolutionChain(ctx context.Context, id int) (*pokeapi.EvolutionChain, error) {
	f.count("evolution-chain")
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	c, ok := f.chains[id]
	if !ok {
		return nil, notFoundErr("evolution-chain")
	}
	return c, nil
}

func (f *fakeUpstream) Generations(ctx context.Context) (*pokeapi.ResourceList, error) {
	f.count("generation-list")
	if f.genListErr != nil {
		return nil, f.genListErr
	}
	if f.genList == nil {
		return &pokeapi.ResourceList{}, nil
	}
	return f.genList, nil
}

func (f *fakeUpstream) Types(ctx context.Context) (*pokeapi.ResourceList, error) {
	f.count("type-list")
	if f.typeListErr != nil {
		return nil, f.typeListErr
	}
	if f.typeList == nil {
		return &pokeapi.ResourceList{}, nil
	}
	return f.typeList, nil
}

func pokemonFixture(id int, name string, types ...string) *pokeapi.Pokemon {
	p := &pokeapi.Pokemon{
		ID:             id,
		Name:           name,
		Height:         4,
		Weight:         60,
		BaseExperience: 112,
		IsDefault:      true,
		Species: pokeapi.NamedResource{
			Name: name,
			URL:  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon-species/%d/", id),
		},
	}
	for i, t := range types {
		p.Types = append(p.Types, pokeapi.TypeSlot{
			Slot: i + 1,
			Type: pokeapi.NamedResource{Name: t, URL: "https://pokeapi.co/api/v2/type/13/"},
		})
	}
	p.Abilities = []pokeapi.AbilitySlot{
		{Slot: 1, Ability: pokeapi.NamedResource{Name: "static"}},
		{Slot: 3, IsHidden: true, Ability: pokeapi.NamedResource{Name: "lightning-rod"}},
	}
	p.Stats = []pokeapi.StatValue{
		{Stat: pokeapi.NamedResource{Name: "hp"}, BaseStat: 35},
		{Stat: pokeapi.NamedResource{Name: "speed"}, BaseStat: 90},
	}
	p.Sprites.FrontDefault = fmt.Sprintf("https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png", id)
	p.Sprites.Other.OfficialArtwork.FrontDefault = fmt.Sprintf("https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%d.png", id)
	return p
}

func speciesFixture(id int, name, genName string, genID int) *pokeapi.Species {
	happiness := 70
	hatch := 10
	return &pokeapi.Species{
		ID:            id,
		Name:          name,
		GenderRate:    4,
		CaptureRate:   190,
		BaseHappiness: &happiness,
		HatchCounter:  &hatch,
		Generation: pokeapi.NamedResource{
			Name: genName,
			URL:  fmt.Sprintf("https://pokeapi.co/api/v2/generation/%d/", genID),
		},
		EggGroups: []pokeapi.NamedResource{{Name: "ground"}, {Name: "fairy"}},
		FlavorTextEntries: []pokeapi.FlavorTextEntry{
			{
				FlavorText: "Quand plusieurs de ces POKaMON se rassemblent...",
				Language:   pokeapi.NamedResource{Name: "fr"},
				Version:    pokeapi.NamedResource{Name: "red"},
			},
			{
				FlavorText: "When several of\nthese POKeMON\fgather, their electricity could build and cause lightning storms.",
				Language:   pokeapi.NamedResource{Name: "en"},
				Version:    pokeapi.NamedResource{Name: "red"},
			},
		},
		Genera: []pokeapi.GenusEntry{
			{Genus: "Maus", Language: pokeapi.NamedResource{Name: "de"}},
			{Genus: "Mouse Pokémon", Language: pokeapi.NamedResource{Name: "en"}},
		},
		Habitat:    &pokeapi.NamedResource{Name: "forest"},
		Shape:      &pokeapi.NamedResource{Name: "quadruped"},
		GrowthRate: &pokeapi.NamedResource{Name: "medium"},
	}
}

func generationFixture(id int, name, region string) *pokeapi.Generation {
	return &pokeapi.Generation{
		ID:         id,
		Name:       name,
		MainRegion: pokeapi.NamedResource{Name: region, URL: fmt.Sprintf("https://pokeapi.co/api/v2/region/%d/", id)},
	}
}

func chainFixture(id int, first, second, third string, secondLevel, thirdLevel int) *pokeapi.EvolutionChain {
	return &pokeapi.EvolutionChain{
		ID: id,
		Chain: pokeapi.ChainLink{
			Species: pokeapi.NamedResource{Name: first},
			EvolvesTo: []pokeapi.ChainLink{{
				Species: pokeapi.NamedResource{Name: second},
				EvolutionDetails: []pokeapi.EvolutionDetail{{
					MinLevel: &secondLevel,
					Trigger:  pokeapi.NamedResource{Name: "level-up"},
				}},
				EvolvesTo: []pokeapi.ChainLink{{
					Species: pokeapi.NamedResource{Name: third},
					EvolutionDetails: []pokeapi.EvolutionDetail{{
						MinLevel: &thirdLevel,
						Trigger:  pokeapi.NamedResource{Name: "level-up"},
					}},
				}},
			}},
		},
	}
}
