package pokedex

import "fmt"

// TypeInfo is one Pokémon type. It doubles as the element of the cached
// type collection and of a record's type list.
type TypeInfo struct {
	Name string `json:"name"`
}

// Validate reports whether the record is servable.
func (t TypeInfo) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("type record: empty name")
	}
	return nil
}

// Ability is one ability slot of a Pokémon.
type Ability struct {
	Name     string `json:"name"`
	IsHidden bool   `json:"is_hidden"`
}

// StatLine is one base stat of a Pokémon.
type StatLine struct {
	Name     string `json:"name"`
	BaseStat int    `json:"base_stat"`
}

// SpriteSet carries the sprite URLs a record is served with. URLs are
// already normalized (https, optionally rewritten to the local sprite
// base) when the set is built.
type SpriteSet struct {
	FrontDefault    string `json:"front_default,omitempty"`
	BackDefault     string `json:"back_default,omitempty"`
	FrontShiny      string `json:"front_shiny,omitempty"`
	BackShiny       string `json:"back_shiny,omitempty"`
	OfficialArtwork string `json:"official_artwork,omitempty"`
	AnimatedFront   string `json:"animated_front,omitempty"`
}

// Summary is one entry of the full Pokédex listing.
type Summary struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	GenerationID int        `json:"generation_id"`
	Types        []TypeInfo `json:"types"`
	SpriteURL    string     `json:"sprite_url,omitempty"`
	IsLegendary  bool       `json:"is_legendary"`
	IsMythical   bool       `json:"is_mythical"`
	IsBaby       bool       `json:"is_baby"`
}

// Validate reports whether the record is servable. GenerationID zero is
// allowed: it marks an entry whose generation could not be resolved.
func (s Summary) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("summary record: invalid id %d", s.ID)
	}
	if s.Name == "" {
		return fmt.Errorf("summary record %d: empty name", s.ID)
	}
	if s.GenerationID < 0 {
		return fmt.Errorf("summary record %q: negative generation id %d", s.Name, s.GenerationID)
	}
	if len(s.Types) == 0 {
		return fmt.Errorf("summary record %q: no types", s.Name)
	}
	for _, t := range s.Types {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("summary record %q: %w", s.Name, err)
		}
	}
	return nil
}

// EvolutionNode is one stage of an evolution tree. MinLevel and Trigger
// describe the condition for evolving into this stage and are absent on
// the root.
type EvolutionNode struct {
	Species   string          `json:"species"`
	MinLevel  *int            `json:"min_level,omitempty"`
	Trigger   string          `json:"trigger,omitempty"`
	EvolvesTo []EvolutionNode `json:"evolves_to,omitempty"`
}

// Detail is the full per-Pokémon record served by the detail endpoint.
type Detail struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Genus          string         `json:"genus"`
	Description    string         `json:"description"`
	GenerationID   int            `json:"generation_id"`
	RegionName     string         `json:"region_name"`
	Types          []TypeInfo     `json:"types"`
	Abilities      []Ability      `json:"abilities"`
	Height         int            `json:"height"`
	Weight         int            `json:"weight"`
	BaseExperience int            `json:"base_experience"`
	Stats          []StatLine     `json:"stats"`
	Sprites        SpriteSet      `json:"sprites"`
	CaptureRate    int            `json:"capture_rate"`
	BaseHappiness  *int           `json:"base_happiness"`
	GenderRatio    string         `json:"gender_ratio"`
	HatchSteps     string         `json:"hatch_steps"`
	EggGroups      []string       `json:"egg_groups,omitempty"`
	EvolvesFrom    string         `json:"evolves_from,omitempty"`
	Evolution      *EvolutionNode `json:"evolution,omitempty"`
	Habitat        string         `json:"habitat,omitempty"`
	Shape          string         `json:"shape,omitempty"`
	GrowthRate     string         `json:"growth_rate,omitempty"`
	IsLegendary    bool           `json:"is_legendary"`
	IsMythical     bool           `json:"is_mythical"`
	IsBaby         bool           `json:"is_baby"`
}

// Validate reports whether the record is servable. Derived text fields
// must carry at least their fallback values; optional fields (evolution,
// habitat, evolves_from) may be empty.
func (d *Detail) Validate() error {
	if d.ID <= 0 {
		return fmt.Errorf("detail record: invalid id %d", d.ID)
	}
	if d.Name == "" {
		return fmt.Errorf("detail record %d: empty name", d.ID)
	}
	if d.Genus == "" {
		return fmt.Errorf("detail record %q: empty genus", d.Name)
	}
	if d.Description == "" {
		return fmt.Errorf("detail record %q: empty description", d.Name)
	}
	if d.GenderRatio == "" {
		return fmt.Errorf("detail record %q: empty gender ratio", d.Name)
	}
	if d.HatchSteps == "" {
		return fmt.Errorf("detail record %q: empty hatch steps", d.Name)
	}
	if d.RegionName == "" {
		return fmt.Errorf("detail record %q: empty region name", d.Name)
	}
	if d.GenerationID < 0 {
		return fmt.Errorf("detail record %q: negative generation id %d", d.Name, d.GenerationID)
	}
	if len(d.Types) == 0 {
		return fmt.Errorf("detail record %q: no types", d.Name)
	}
	return nil
}

// Generation is one entry of the cached generation collection.
type Generation struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	RegionName   string `json:"region_name"`
	PokemonCount int    `json:"pokemon_count"`
}

// Validate reports whether the record is servable.
func (g Generation) Validate() error {
	if g.ID <= 0 {
		return fmt.Errorf("generation record: invalid id %d", g.ID)
	}
	if g.Name == "" {
		return fmt.Errorf("generation record %d: empty name", g.ID)
	}
	if g.RegionName == "" {
		return fmt.Errorf("generation record %q: empty region name", g.Name)
	}
	if g.PokemonCount < 0 {
		return fmt.Errorf("generation record %q: negative pokemon count", g.Name)
	}
	return nil
}
