// Package pokedex aggregates PokeAPI payloads into validated, cacheable
// Pokédex records and serves them through a cache-backed facade.
//
// The package splits into four layers:
//
//   - Aggregator: combines the payloads of several upstream fetches into
//     one record (detail, summary or generation), deriving display
//     fields and degrading optional data when follow-up fetches fail.
//   - Builder: assembles the full summary, generation and type
//     collections from per-entity aggregations, batched and throttled.
//   - Coordinator: an atomic flag serializing full refresh runs within
//     one process; concurrent refreshes are rejected, never queued.
//   - Service: the facade the API layer calls. It owns all cache access,
//     validating records on read, deleting corrupt entries, and running
//     every full rebuild under the Coordinator.
//
// Records cache as JSON under fixed keys (the collections) or per-entity
// keys derived from the normalized identifier (details). A record that
// fails validation on read is treated as a miss and rebuilt from
// upstream, so a corrupt cache can never surface to clients.
package pokedex
