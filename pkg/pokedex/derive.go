package pokedex

import (
	"fmt"
	"strings"

	"pokedexapi/pkg/pokeapi"
)

// remoteSpriteBase is where PokeAPI hosts sprite assets. In local sprite
// mode, URLs under this base are rewritten to the configured local base.
const remoteSpriteBase = "https://raw.githubusercontent.com/PokeAPI/sprites/master"

const (
	unknownGenus       = "Unknown Genus"
	missingDescription = "No description available."
	unknownRegion      = "unknown"
)

// romanGenerations maps the numeral suffix of PokeAPI generation names
// ("generation-iv") to the numeric generation ID.
var romanGenerations = map[string]int{
	"i":    1,
	"ii":   2,
	"iii":  3,
	"iv":   4,
	"v":    5,
	"vi":   6,
	"vii":  7,
	"viii": 8,
	"ix":   9,
}

// generationIDFromName resolves a "generation-<numeral>" name to its
// numeric ID. Names that do not follow that form, or whose numeral is
// outside the known range, resolve to 0.
func generationIDFromName(name string) int {
	parts := strings.Split(name, "-")
	if len(parts) != 2 {
		return 0
	}
	return romanGenerations[parts[1]]
}

// genderRatio renders the upstream gender_rate (female eighths, negative
// for genderless species) as display text.
func genderRatio(rate int) string {
	switch {
	case rate < 0:
		return "Genderless"
	case rate == 0:
		return "100% Male"
	case rate == 8:
		return "100% Female"
	}
	female := float64(rate) / 8 * 100
	male := 100 - female
	return fmt.Sprintf("%.1f%% Male, %.1f%% Female", male, female)
}

// hatchSteps renders the upstream hatch_counter as a step estimate. Each
// egg cycle is 255 steps.
func hatchSteps(counter *int) string {
	if counter == nil || *counter < 0 {
		return "not available"
	}
	return fmt.Sprintf("%d steps", (*counter+1)*255)
}

// englishGenus picks the English genus from a species' genera list.
func englishGenus(genera []pokeapi.GenusEntry) string {
	for _, g := range genera {
		if g.Language.Name == "en" && g.Genus != "" {
			return g.Genus
		}
	}
	return unknownGenus
}

// flavorVersionOrder ranks source versions newest main series first. The
// description is taken from the highest-ranked version that has an
// English entry.
var flavorVersionOrder = []string{
	"scarlet", "violet",
	"legends-arceus",
	"sword", "shield",
	"ultra-sun", "ultra-moon",
	"sun", "moon",
	"omega-ruby", "alpha-sapphire",
	"x", "y",
	"black-2", "white-2",
	"black", "white",
	"heartgold", "soulsilver",
	"platinum",
	"diamond", "pearl",
	"emerald",
	"firered", "leafgreen",
	"ruby", "sapphire",
	"crystal",
	"gold", "silver",
	"yellow",
	"red", "blue",
}

// englishDescription selects one English flavor text. Preferred versions
// win in flavorVersionOrder; with no preferred version present the first
// English entry is used; with no English entries at all a fixed
// placeholder is returned.
func englishDescription(entries []pokeapi.FlavorTextEntry) string {
	var first string
	byVersion := make(map[string]string)
	for _, e := range entries {
		if e.Language.Name != "en" || e.FlavorText == "" {
			continue
		}
		if first == "" {
			first = e.FlavorText
		}
		if _, seen := byVersion[e.Version.Name]; !seen {
			byVersion[e.Version.Name] = e.FlavorText
		}
	}
	if first == "" {
		return missingDescription
	}
	for _, version := range flavorVersionOrder {
		if text, ok := byVersion[version]; ok {
			return cleanFlavorText(text)
		}
	}
	return cleanFlavorText(first)
}

// cleanFlavorText collapses the newline and form-feed control characters
// PokeAPI embeds in flavor text into single spaces.
func cleanFlavorText(s string) string {
	replaced := strings.NewReplacer("\n", " ", "\f", " ").Replace(s)
	return strings.Join(strings.Fields(replaced), " ")
}

// SpriteOptions controls how sprite URLs are rewritten before serving.
type SpriteOptions struct {
	// Source selects "remote" (PokeAPI-hosted, upgraded to https) or
	// "local" (remote-base URLs rewritten under LocalBase).
	Source string

	// LocalBase is the path prefix substituted for remoteSpriteBase in
	// local mode, e.g. "/sprites".
	LocalBase string
}

// SpriteSourceLocal enables serving sprites from a locally mirrored copy
// of the PokeAPI sprite tree.
const SpriteSourceLocal = "local"

func (o SpriteOptions) rewrite(url string) string {
	if url == "" {
		return ""
	}
	if o.Source == SpriteSourceLocal && strings.HasPrefix(url, remoteSpriteBase) {
		return o.LocalBase + strings.TrimPrefix(url, remoteSpriteBase)
	}
	if strings.HasPrefix(url, "http://") {
		return "https://" + strings.TrimPrefix(url, "http://")
	}
	return url
}

// spriteSetFrom maps the upstream sprite payload to the served set.
func spriteSetFrom(s pokeapi.Sprites, opts SpriteOptions) SpriteSet {
	return SpriteSet{
		FrontDefault:    opts.rewrite(s.FrontDefault),
		BackDefault:     opts.rewrite(s.BackDefault),
		FrontShiny:      opts.rewrite(s.FrontShiny),
		BackShiny:       opts.rewrite(s.BackShiny),
		OfficialArtwork: opts.rewrite(s.Other.OfficialArtwork.FrontDefault),
		AnimatedFront:   opts.rewrite(s.Versions.GenerationV.BlackWhite.Animated.FrontDefault),
	}
}

// typeList converts the upstream type slots, preserving slot order.
func typeList(slots []pokeapi.TypeSlot) []TypeInfo {
	types := make([]TypeInfo, 0, len(slots))
	for _, slot := range slots {
		if slot.Type.Name == "" {
			continue
		}
		types = append(types, TypeInfo{Name: slot.Type.Name})
	}
	return types
}

// abilityList converts the upstream ability slots, preserving slot order.
func abilityList(slots []pokeapi.AbilitySlot) []Ability {
	abilities := make([]Ability, 0, len(slots))
	for _, slot := range slots {
		if slot.Ability.Name == "" {
			continue
		}
		abilities = append(abilities, Ability{Name: slot.Ability.Name, IsHidden: slot.IsHidden})
	}
	return abilities
}

// statList converts the upstream base stats.
func statList(values []pokeapi.StatValue) []StatLine {
	stats := make([]StatLine, 0, len(values))
	for _, v := range values {
		if v.Stat.Name == "" {
			continue
		}
		stats = append(stats, StatLine{Name: v.Stat.Name, BaseStat: v.BaseStat})
	}
	return stats
}

// eggGroupNames extracts the egg group names.
func eggGroupNames(groups []pokeapi.NamedResource) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.Name == "" {
			continue
		}
		names = append(names, g.Name)
	}
	return names
}

// evolutionTree converts an upstream chain into the served tree. The
// first evolution detail of each link supplies the level and trigger.
func evolutionTree(link pokeapi.ChainLink) *EvolutionNode {
	node := &EvolutionNode{Species: link.Species.Name}
	if len(link.EvolutionDetails) > 0 {
		detail := link.EvolutionDetails[0]
		node.MinLevel = detail.MinLevel
		node.Trigger = detail.Trigger.Name
	}
	for _, next := range link.EvolvesTo {
		node.EvolvesTo = append(node.EvolvesTo, *evolutionTree(next))
	}
	return node
}
