// Package testutil provides a configurable in-process PokeAPI stub for
// tests that exercise the real HTTP client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockPokeAPI serves canned PokeAPI responses and counts requests per
// path. Unregistered paths answer 404 with the upstream's error body.
type MockPokeAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	requests map[string]int
}

// NewMockPokeAPI starts the stub server. Callers own the Close.
func NewMockPokeAPI() *MockPokeAPI {
	m := &MockPokeAPI{
		handlers: make(map[string]http.HandlerFunc),
		requests: make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := normalizePath(r.URL.Path)

		m.mu.Lock()
		m.requests[path]++
		handler := m.handlers[path]
		m.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail": "Not found."}`)
	}))
	return m
}

func normalizePath(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// URL returns the stub server's base URL.
func (m *MockPokeAPI) URL() string {
	return m.server.URL
}

// Close shuts the stub server down.
func (m *MockPokeAPI) Close() {
	m.server.Close()
}

// Requests returns how often a path was requested.
func (m *MockPokeAPI) Requests(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[normalizePath(path)]
}

// TotalRequests returns the request count across all paths.
func (m *MockPokeAPI) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.requests {
		total += n
	}
	return total
}

// Reset clears the request counters.
func (m *MockPokeAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[string]int)
}

// SetHandler installs a custom handler for a path.
func (m *MockPokeAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[normalizePath(path)] = handler
}

// SetJSON serves a marshaled payload for a path.
func (m *MockPokeAPI) SetJSON(path string, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal payload for %s: %v", path, err))
	}
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		w.Write(body)
	})
}

// SetError serves a bare error status for a path.
func (m *MockPokeAPI) SetError(path string, status int) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error": "status %d"}`, status)
	})
}

// PokemonFixture describes one Pokémon served by the stub, covering both
// the base and species payloads.
type PokemonFixture struct {
	ID             int
	Name           string
	Genus          string
	Types          []string
	GenerationID   int
	GenerationName string
	ChainID        int
	GenderRate     int
	CaptureRate    int
	IsLegendary    bool
	IsMythical     bool
	IsBaby         bool
}

// AddPokemon registers the base and species payloads under both the
// numeric and name paths, the way upstream resolves either identifier.
func (m *MockPokeAPI) AddPokemon(f PokemonFixture) {
	if len(f.Types) == 0 {
		f.Types = []string{"normal"}
	}
	if f.Genus == "" {
		f.Genus = "Seed Pokémon"
	}
	if f.CaptureRate == 0 {
		f.CaptureRate = 45
	}
	if f.GenerationName == "" {
		f.GenerationName = "generation-i"
		f.GenerationID = 1
	}

	base := f.basePayload()
	m.SetJSON(fmt.Sprintf("/pokemon/%d", f.ID), http.StatusOK, base)
	m.SetJSON("/pokemon/"+f.Name, http.StatusOK, base)

	species := f.speciesPayload()
	m.SetJSON(fmt.Sprintf("/pokemon-species/%d", f.ID), http.StatusOK, species)
	m.SetJSON("/pokemon-species/"+f.Name, http.StatusOK, species)
}

// AddGeneration registers one generation payload under both paths.
func (m *MockPokeAPI) AddGeneration(id int, name, region string) {
	payload := map[string]any{
		"id":   id,
		"name": name,
		"main_region": map[string]any{
			"name": region,
			"url":  fmt.Sprintf("https://pokeapi.co/api/v2/region/%d/", id),
		},
		"pokemon_species": []any{},
	}
	m.SetJSON(fmt.Sprintf("/generation/%d", id), http.StatusOK, payload)
	m.SetJSON("/generation/"+name, http.StatusOK, payload)
}

// AddEvolutionChain registers a linear chain evolving through the given
// species names in order.
func (m *MockPokeAPI) AddEvolutionChain(id int, species ...string) {
	m.SetJSON(fmt.Sprintf("/evolution-chain/%d", id), http.StatusOK, map[string]any{
		"id":    id,
		"chain": chainLink(species, 1),
	})
}

func chainLink(names []string, depth int) map[string]any {
	link := map[string]any{
		"species": map[string]any{
			"name": names[0],
			"url":  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon-species/%d/", depth),
		},
		"evolution_details": []any{},
		"evolves_to":        []any{},
	}
	if len(names) > 1 {
		child := chainLink(names[1:], depth+1)
		child["evolution_details"] = []any{map[string]any{
			"min_level": depth * 16,
			"trigger":   map[string]any{"name": "level-up", "url": "https://pokeapi.co/api/v2/evolution-trigger/1/"},
			"item":      nil,
		}}
		link["evolves_to"] = []any{child}
	}
	return link
}

// ListEntry is one row of an enumeration response.
type ListEntry struct {
	ID   int
	Name string
}

// SetGenerationList serves the /generation enumeration.
func (m *MockPokeAPI) SetGenerationList(entries ...ListEntry) {
	m.SetJSON("/generation", http.StatusOK, resourceList("generation", entries))
}

// SetTypeList serves the /type enumeration.
func (m *MockPokeAPI) SetTypeList(names ...string) {
	entries := make([]ListEntry, 0, len(names))
	for i, name := range names {
		entries = append(entries, ListEntry{ID: i + 1, Name: name})
	}
	m.SetJSON("/type", http.StatusOK, resourceList("type", entries))
}

func resourceList(endpoint string, entries []ListEntry) map[string]any {
	results := make([]any, 0, len(entries))
	for _, e := range entries {
		results = append(results, map[string]any{
			"name": e.Name,
			"url":  fmt.Sprintf("https://pokeapi.co/api/v2/%s/%d/", endpoint, e.ID),
		})
	}
	return map[string]any{
		"count":    len(entries),
		"next":     nil,
		"previous": nil,
		"results":  results,
	}
}

func (f PokemonFixture) basePayload() map[string]any {
	types := make([]any, 0, len(f.Types))
	for i, t := range f.Types {
		types = append(types, map[string]any{
			"slot": i + 1,
			"type": map[string]any{
				"name": t,
				"url":  fmt.Sprintf("https://pokeapi.co/api/v2/type/%d/", i+1),
			},
		})
	}
	return map[string]any{
		"id":              f.ID,
		"name":            f.Name,
		"height":          7,
		"weight":          69,
		"base_experience": 64,
		"order":           f.ID,
		"is_default":      true,
		"types":           types,
		"abilities": []any{
			map[string]any{
				"slot":      1,
				"is_hidden": false,
				"ability": map[string]any{
					"name": "overgrow",
					"url":  "https://pokeapi.co/api/v2/ability/65/",
				},
			},
		},
		"stats": []any{
			map[string]any{
				"base_stat": 45,
				"effort":    0,
				"stat":      map[string]any{"name": "hp", "url": "https://pokeapi.co/api/v2/stat/1/"},
			},
			map[string]any{
				"base_stat": 45,
				"effort":    0,
				"stat":      map[string]any{"name": "speed", "url": "https://pokeapi.co/api/v2/stat/6/"},
			},
		},
		"sprites": map[string]any{
			"front_default": fmt.Sprintf("https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/%d.png", f.ID),
			"back_default":  nil,
			"front_shiny":   fmt.Sprintf("https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/shiny/%d.png", f.ID),
			"back_shiny":    nil,
			"other": map[string]any{
				"official-artwork": map[string]any{
					"front_default": fmt.Sprintf("https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%d.png", f.ID),
				},
			},
		},
		"species": map[string]any{
			"name": f.Name,
			"url":  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon-species/%d/", f.ID),
		},
	}
}

func (f PokemonFixture) speciesPayload() map[string]any {
	payload := map[string]any{
		"id":             f.ID,
		"name":           f.Name,
		"order":          f.ID,
		"gender_rate":    f.GenderRate,
		"capture_rate":   f.CaptureRate,
		"base_happiness": 70,
		"hatch_counter":  20,
		"is_baby":        f.IsBaby,
		"is_legendary":   f.IsLegendary,
		"is_mythical":    f.IsMythical,
		"generation": map[string]any{
			"name": f.GenerationName,
			"url":  fmt.Sprintf("https://pokeapi.co/api/v2/generation/%d/", f.GenerationID),
		},
		"egg_groups": []any{
			map[string]any{"name": "monster", "url": "https://pokeapi.co/api/v2/egg-group/1/"},
		},
		"flavor_text_entries": []any{
			map[string]any{
				"flavor_text": fmt.Sprintf("A test entry for %s.\nIt lives in tests.", f.Name),
				"language":    map[string]any{"name": "en", "url": "https://pokeapi.co/api/v2/language/9/"},
				"version":     map[string]any{"name": "red", "url": "https://pokeapi.co/api/v2/version/1/"},
			},
		},
		"genera": []any{
			map[string]any{
				"genus":    f.Genus,
				"language": map[string]any{"name": "en", "url": "https://pokeapi.co/api/v2/language/9/"},
			},
		},
		"habitat":     map[string]any{"name": "grassland", "url": "https://pokeapi.co/api/v2/pokemon-habitat/3/"},
		"shape":       map[string]any{"name": "quadruped", "url": "https://pokeapi.co/api/v2/pokemon-shape/8/"},
		"growth_rate": map[string]any{"name": "medium", "url": "https://pokeapi.co/api/v2/growth-rate/2/"},
	}
	if f.ChainID > 0 {
		payload["evolution_chain"] = map[string]any{
			"url": fmt.Sprintf("https://pokeapi.co/api/v2/evolution-chain/%d/", f.ChainID),
		}
	}
	return payload
}
