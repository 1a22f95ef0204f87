package pokedex

import "errors"

var (
	// ErrNotFound indicates the requested Pokémon does not exist upstream.
	ErrNotFound = errors.New("pokemon not found")

	// ErrUpstream indicates a required upstream fetch failed and the record
	// could not be aggregated.
	ErrUpstream = errors.New("upstream fetch failed")

	// ErrBuildFailed indicates a collection build produced no records at all.
	ErrBuildFailed = errors.New("collection build produced no records")

	// ErrRefreshConflict indicates a refresh run was rejected because
	// another one is already in progress.
	ErrRefreshConflict = errors.New("refresh already in progress")

	// ErrUnknownArtifact indicates a refresh was requested for an artifact
	// name the service does not know.
	ErrUnknownArtifact = errors.New("unknown refresh artifact")
)
