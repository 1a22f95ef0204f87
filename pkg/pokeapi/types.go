package pokeapi

import (
	"fmt"
	"strconv"
	"strings"
)

// NamedResource is a reference to another PokeAPI resource.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID extracts the numeric resource ID from the reference URL.
func (r NamedResource) ID() (int, error) {
	return IDFromURL(r.URL)
}

// IDFromURL extracts the trailing numeric ID from a PokeAPI resource URL,
// e.g. "https://pokeapi.co/api/v2/pokemon-species/25/" yields 25.
func IDFromURL(rawURL string) (int, error) {
	trimmed := strings.TrimSuffix(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return 0, fmt.Errorf("no resource id in url %q", rawURL)
	}

	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("parse resource id from url %q: %w", rawURL, err)
	}
	return id, nil
}

// ResourceList is a paginated enumeration response (e.g. /generation, /type).
type ResourceList struct {
	Count   int             `json:"count"`
	Results []NamedResource `json:"results"`
}

// TypeSlot is one entry of a Pokémon's type list.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// AbilitySlot is one entry of a Pokémon's ability list.
type AbilitySlot struct {
	Slot     int           `json:"slot"`
	IsHidden bool          `json:"is_hidden"`
	Ability  NamedResource `json:"ability"`
}

// StatValue is one entry of a Pokémon's base stat list.
type StatValue struct {
	Stat     NamedResource `json:"stat"`
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
}

// Sprites carries the sprite URLs used downstream. PokeAPI nests variants
// deeply; only the paths this service serves are mapped.
type Sprites struct {
	FrontDefault string `json:"front_default"`
	BackDefault  string `json:"back_default"`
	FrontShiny   string `json:"front_shiny"`
	BackShiny    string `json:"back_shiny"`
	FrontFemale  string `json:"front_female"`

	Other struct {
		OfficialArtwork struct {
			FrontDefault string `json:"front_default"`
			FrontShiny   string `json:"front_shiny"`
		} `json:"official-artwork"`
	} `json:"other"`

	Versions struct {
		GenerationV struct {
			BlackWhite struct {
				Animated struct {
					FrontDefault string `json:"front_default"`
					FrontShiny   string `json:"front_shiny"`
				} `json:"animated"`
			} `json:"black-white"`
		} `json:"generation-v"`
	} `json:"versions"`
}

// Pokemon is the /pokemon/{ident} payload.
type Pokemon struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Height         int           `json:"height"`
	Weight         int           `json:"weight"`
	BaseExperience int           `json:"base_experience"`
	Order          int           `json:"order"`
	IsDefault      bool          `json:"is_default"`
	Types          []TypeSlot    `json:"types"`
	Abilities      []AbilitySlot `json:"abilities"`
	Stats          []StatValue   `json:"stats"`
	Sprites        Sprites       `json:"sprites"`
	Species        NamedResource `json:"species"`
}

// FlavorTextEntry is one localized description from a species payload.
type FlavorTextEntry struct {
	FlavorText string        `json:"flavor_text"`
	Language   NamedResource `json:"language"`
	Version    NamedResource `json:"version"`
}

// GenusEntry is one localized genus from a species payload.
type GenusEntry struct {
	Genus    string        `json:"genus"`
	Language NamedResource `json:"language"`
}

// Species is the /pokemon-species/{ident} payload. Nullable upstream fields
// use pointers so "absent" is distinguishable from zero.
type Species struct {
	ID                 int            `json:"id"`
	Name               string         `json:"name"`
	Order              int            `json:"order"`
	GenderRate         int            `json:"gender_rate"`
	CaptureRate        int            `json:"capture_rate"`
	BaseHappiness      *int           `json:"base_happiness"`
	IsBaby             bool           `json:"is_baby"`
	IsLegendary        bool           `json:"is_legendary"`
	IsMythical         bool           `json:"is_mythical"`
	HatchCounter       *int           `json:"hatch_counter"`
	Generation         NamedResource  `json:"generation"`
	EvolvesFromSpecies *NamedResource `json:"evolves_from_species"`

	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`

	EggGroups         []NamedResource   `json:"egg_groups"`
	FlavorTextEntries []FlavorTextEntry `json:"flavor_text_entries"`
	Genera            []GenusEntry      `json:"genera"`
	Habitat           *NamedResource    `json:"habitat"`
	Shape             *NamedResource    `json:"shape"`
	GrowthRate        *NamedResource    `json:"growth_rate"`
}

// Generation is the /generation/{ident} payload.
type Generation struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	MainRegion     NamedResource   `json:"main_region"`
	PokemonSpecies []NamedResource `json:"pokemon_species"`
}

// EvolutionDetail describes one condition of an evolution step.
type EvolutionDetail struct {
	MinLevel *int           `json:"min_level"`
	Trigger  NamedResource  `json:"trigger"`
	Item     *NamedResource `json:"item"`
}

// ChainLink is one node of an evolution chain. EvolvesTo recurses into the
// next stages.
type ChainLink struct {
	Species          NamedResource     `json:"species"`
	EvolvesTo        []ChainLink       `json:"evolves_to"`
	EvolutionDetails []EvolutionDetail `json:"evolution_details"`
}

// EvolutionChain is the /evolution-chain/{id} payload.
type EvolutionChain struct {
	ID    int       `json:"id"`
	Chain ChainLink `json:"chain"`
}
