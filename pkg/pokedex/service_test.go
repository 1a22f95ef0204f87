package pokedex

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pokedexapi/pkg/cache"
	"pokedexapi/pkg/pokeapi"
)

// warmableFake carries enough fixtures to build every artifact: three
// Pokémon, one generation and two types.
func warmableFake() *fakeUpstream {
	fake := newFakeUpstream()
	registerRange(fake, 1, 3)
	fake.genList = &pokeapi.ResourceList{
		Count:   1,
		Results: []pokeapi.NamedResource{{Name: "generation-i", URL: "https://pokeapi.co/api/v2/generation/1/"}},
	}
	fake.registerGeneration(generationFixture(1, "generation-i", "kanto"))
	fake.typeList = &pokeapi.ResourceList{
		Count: 2,
		Results: []pokeapi.NamedResource{
			{Name: "normal", URL: "https://pokeapi.co/api/v2/type/1/"},
			{Name: "electric", URL: "https://pokeapi.co/api/v2/type/13/"},
		},
	}
	return fake
}

func newTestService(t *testing.T, fake *fakeUpstream) (*Service, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore(cache.MemoryConfig{Capacity: 256, TTL: time.Hour})
	agg := NewAggregator(fake, SpriteOptions{Source: "remote"})
	builder := NewBuilder(agg, BuilderConfig{
		MaxPokemonID: 3,
		BatchSize:    2,
		BatchPause:   time.Millisecond,
		Concurrency:  2,
	})
	svc := NewService(store, agg, builder, ServiceConfig{CacheTTL: time.Hour})
	return svc, store
}

func TestServiceGetDetail_CachesAggregation(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	first, err := svc.GetDetail(ctx, "pokemon-1", false)
	if err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("detail id = %d, want 1", first.ID)
	}
	calls := fake.totalCalls()
	if calls == 0 {
		t.Fatal("first call should have hit upstream")
	}

	second, err := svc.GetDetail(ctx, "pokemon-1", false)
	if err != nil {
		t.Fatalf("second GetDetail failed: %v", err)
	}
	if fake.totalCalls() != calls {
		t.Errorf("second call hit upstream %d more times, want 0", fake.totalCalls()-calls)
	}
	if second.Name != first.Name || second.GenerationID != first.GenerationID {
		t.Errorf("cached detail diverges: %+v vs %+v", second, first)
	}
}

func TestServiceGetDetail_NormalizesIdentifier(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	if _, err := svc.GetDetail(ctx, "pokemon-2", false); err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	calls := fake.totalCalls()

	// Case and surrounding whitespace map to the same cache entry.
	if _, err := svc.GetDetail(ctx, "  POKEMON-2 ", false); err != nil {
		t.Fatalf("GetDetail with unnormalized ident failed: %v", err)
	}
	if fake.totalCalls() != calls {
		t.Errorf("normalized request hit upstream, want cache hit")
	}

	// A numeric identifier is a distinct cache entry.
	if _, err := svc.GetDetail(ctx, "2", false); err != nil {
		t.Fatalf("GetDetail by id failed: %v", err)
	}
	if fake.totalCalls() == calls {
		t.Error("numeric ident should aggregate separately from the name entry")
	}
}

func TestServiceGetDetail_ForceBypassesCache(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	if _, err := svc.GetDetail(ctx, "pokemon-1", false); err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	calls := fake.totalCalls()

	if _, err := svc.GetDetail(ctx, "pokemon-1", true); err != nil {
		t.Fatalf("forced GetDetail failed: %v", err)
	}
	if fake.totalCalls() == calls {
		t.Error("force must re-aggregate from upstream")
	}
}

func TestServiceGetDetail_NotFound(t *testing.T) {
	fake := warmableFake()
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	_, err := svc.GetDetail(ctx, "missingno", false)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, found, _ := store.Get(ctx, detailKey("missingno")); found {
		t.Error("failed aggregation must not be cached")
	}
}

func TestServiceGetDetail_CorruptEntryRebuilt(t *testing.T) {
	fake := warmableFake()
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	key := detailKey("pokemon-1")
	if err := store.Set(ctx, key, []byte("{not json"), time.Hour); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	detail, err := svc.GetDetail(ctx, "pokemon-1", false)
	if err != nil {
		t.Fatalf("corrupt entry must fall through to aggregation: %v", err)
	}
	if detail.ID != 1 {
		t.Fatalf("detail id = %d, want 1", detail.ID)
	}

	data, found, err := store.Get(ctx, key)
	if err != nil || !found {
		t.Fatalf("rebuilt entry missing: found=%v err=%v", found, err)
	}
	var stored Detail
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("rebuilt entry is not valid JSON: %v", err)
	}
	if stored.ID != 1 {
		t.Errorf("rebuilt entry id = %d, want 1", stored.ID)
	}
}

func TestServiceGetDetail_InvalidEntryRebuilt(t *testing.T) {
	fake := warmableFake()
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	// Decodes fine but fails validation (no name, no types).
	if err := store.Set(ctx, detailKey("pokemon-1"), []byte(`{"id":1}`), time.Hour); err != nil {
		t.Fatalf("seed invalid entry: %v", err)
	}

	detail, err := svc.GetDetail(ctx, "pokemon-1", false)
	if err != nil {
		t.Fatalf("invalid entry must fall through to aggregation: %v", err)
	}
	if detail.Name != "pokemon-1" {
		t.Errorf("detail name = %q, want pokemon-1", detail.Name)
	}
}

func TestServiceGetDetail_CacheWriteFailureDegrades(t *testing.T) {
	fake := warmableFake()
	base := cache.NewMemoryStore(cache.MemoryConfig{Capacity: 64, TTL: time.Hour})
	flaky := &flakyStore{Store: base, setErr: errors.New("redis down")}

	agg := NewAggregator(fake, SpriteOptions{})
	builder := NewBuilder(agg, BuilderConfig{MaxPokemonID: 3, BatchSize: 2, BatchPause: time.Millisecond, Concurrency: 2})
	svc := NewService(flaky, agg, builder, ServiceConfig{CacheTTL: time.Hour})
	ctx := context.Background()

	detail, err := svc.GetDetail(ctx, "pokemon-1", false)
	if err != nil {
		t.Fatalf("cache write failure must not fail the request: %v", err)
	}
	if detail.ID != 1 {
		t.Fatalf("detail id = %d, want 1", detail.ID)
	}

	// Nothing was cached, so the next call aggregates again.
	calls := fake.totalCalls()
	if _, err := svc.GetDetail(ctx, "pokemon-1", false); err != nil {
		t.Fatalf("second GetDetail failed: %v", err)
	}
	if fake.totalCalls() == calls {
		t.Error("expected a fresh aggregation after a failed cache write")
	}
}

func TestServiceGetSummaries_BuildsAndCaches(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	summaries, err := svc.GetSummaries(ctx, false)
	if err != nil {
		t.Fatalf("GetSummaries failed: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("got %d summaries, want 3", len(summaries))
	}
	calls := fake.totalCalls()

	again, err := svc.GetSummaries(ctx, false)
	if err != nil {
		t.Fatalf("second GetSummaries failed: %v", err)
	}
	if fake.totalCalls() != calls {
		t.Errorf("second call hit upstream %d more times, want 0", fake.totalCalls()-calls)
	}
	if len(again) != 3 {
		t.Fatalf("cached list length = %d, want 3", len(again))
	}
}

func TestServiceGetSummaries_ConflictWhileRefreshing(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)

	if !svc.coord.Begin() {
		t.Fatal("claiming the refresh slot failed")
	}
	defer svc.coord.End()

	_, err := svc.GetSummaries(context.Background(), false)
	if !errors.Is(err, ErrRefreshConflict) {
		t.Fatalf("expected ErrRefreshConflict, got %v", err)
	}
	if !svc.Refreshing() {
		t.Error("Refreshing must report true while the slot is held")
	}
}

func TestServiceGetGenerations_CountsFromCachedSummaries(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, ArtifactSummary); err != nil {
		t.Fatalf("summary refresh failed: %v", err)
	}

	generations, err := svc.GetGenerations(ctx, false)
	if err != nil {
		t.Fatalf("GetGenerations failed: %v", err)
	}
	if len(generations) != 1 {
		t.Fatalf("got %d generations, want 1", len(generations))
	}
	if generations[0].PokemonCount != 3 {
		t.Errorf("pokemon count = %d, want 3 from the cached summary list", generations[0].PokemonCount)
	}
}

func TestServiceGetGenerations_WithoutSummariesZeroCounts(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)

	generations, err := svc.GetGenerations(context.Background(), false)
	if err != nil {
		t.Fatalf("GetGenerations failed: %v", err)
	}
	if generations[0].PokemonCount != 0 {
		t.Errorf("count without a summary list = %d, want 0", generations[0].PokemonCount)
	}
}

func TestServiceGetTypes_RoundTrip(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	types, err := svc.GetTypes(ctx, false)
	if err != nil {
		t.Fatalf("GetTypes failed: %v", err)
	}
	if len(types) != 2 || types[0].Name != "normal" {
		t.Fatalf("types = %+v", types)
	}
	calls := fake.totalCalls()

	if _, err := svc.GetTypes(ctx, false); err != nil {
		t.Fatalf("second GetTypes failed: %v", err)
	}
	if fake.totalCalls() != calls {
		t.Error("second call should serve from cache")
	}
}

func TestServiceRefresh_All(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	result, err := svc.Refresh(ctx, ArtifactAll)
	if err != nil {
		t.Fatalf("Refresh(all) failed: %v", err)
	}
	if result.Counts[ArtifactSummary] != 3 {
		t.Errorf("summary count = %d, want 3", result.Counts[ArtifactSummary])
	}
	if result.Counts[ArtifactGenerations] != 1 {
		t.Errorf("generation count = %d, want 1", result.Counts[ArtifactGenerations])
	}
	if result.Counts[ArtifactTypes] != 2 {
		t.Errorf("type count = %d, want 2", result.Counts[ArtifactTypes])
	}

	// Every artifact is now served from cache.
	calls := fake.totalCalls()
	if _, err := svc.GetSummaries(ctx, false); err != nil {
		t.Fatalf("GetSummaries after refresh failed: %v", err)
	}
	if _, err := svc.GetGenerations(ctx, false); err != nil {
		t.Fatalf("GetGenerations after refresh failed: %v", err)
	}
	if _, err := svc.GetTypes(ctx, false); err != nil {
		t.Fatalf("GetTypes after refresh failed: %v", err)
	}
	if fake.totalCalls() != calls {
		t.Errorf("reads after a full refresh hit upstream %d times, want 0", fake.totalCalls()-calls)
	}

	// Generation counts were fed from the freshly built summaries.
	generations, _ := svc.GetGenerations(ctx, false)
	if generations[0].PokemonCount != 3 {
		t.Errorf("pokemon count after refresh(all) = %d, want 3", generations[0].PokemonCount)
	}
}

func TestServiceRefresh_SingleArtifact(t *testing.T) {
	fake := warmableFake()
	svc, store := newTestService(t, fake)
	ctx := context.Background()

	result, err := svc.Refresh(ctx, ArtifactTypes)
	if err != nil {
		t.Fatalf("Refresh(types) failed: %v", err)
	}
	if result.Counts[ArtifactTypes] != 2 {
		t.Errorf("type count = %d, want 2", result.Counts[ArtifactTypes])
	}

	if _, found, _ := store.Get(ctx, typesKey); !found {
		t.Error("types artifact missing from cache after refresh")
	}
	if _, found, _ := store.Get(ctx, summaryKey); found {
		t.Error("summary artifact must not be touched by a types refresh")
	}
}

func TestServiceRefresh_UnknownArtifact(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)

	_, err := svc.Refresh(context.Background(), "sprites")
	if !errors.Is(err, ErrUnknownArtifact) {
		t.Fatalf("expected ErrUnknownArtifact, got %v", err)
	}
}

func TestServiceRefresh_Conflict(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)

	if !svc.coord.Begin() {
		t.Fatal("claiming the refresh slot failed")
	}
	defer svc.coord.End()

	_, err := svc.Refresh(context.Background(), ArtifactTypes)
	if !errors.Is(err, ErrRefreshConflict) {
		t.Fatalf("expected ErrRefreshConflict, got %v", err)
	}
}

func TestServiceRefresh_SlotReleasedAfterFailure(t *testing.T) {
	fake := warmableFake()
	fake.typeListErr = serverErr("type")
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, ArtifactTypes); err == nil {
		t.Fatal("expected the refresh to fail")
	}
	if svc.Refreshing() {
		t.Error("slot must be released after a failed refresh")
	}

	fake.typeListErr = nil
	if _, err := svc.Refresh(ctx, ArtifactTypes); err != nil {
		t.Errorf("refresh after recovery failed: %v", err)
	}
}

func TestServiceEnsureWarm(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)
	ctx := context.Background()

	if err := svc.EnsureWarm(ctx); err != nil {
		t.Fatalf("EnsureWarm failed: %v", err)
	}
	calls := fake.totalCalls()
	if calls == 0 {
		t.Fatal("cold EnsureWarm should have built the artifacts")
	}

	if err := svc.EnsureWarm(ctx); err != nil {
		t.Fatalf("second EnsureWarm failed: %v", err)
	}
	if fake.totalCalls() != calls {
		t.Errorf("warm EnsureWarm hit upstream %d times, want 0", fake.totalCalls()-calls)
	}
}

func TestServiceStoreHealthy(t *testing.T) {
	fake := warmableFake()
	svc, _ := newTestService(t, fake)
	if !svc.StoreHealthy(context.Background()) {
		t.Error("memory store should report healthy")
	}

	base := cache.NewMemoryStore(cache.MemoryConfig{Capacity: 64, TTL: time.Hour})
	flaky := &flakyStore{Store: base, getErr: errors.New("redis down")}
	agg := NewAggregator(fake, SpriteOptions{})
	builder := NewBuilder(agg, BuilderConfig{MaxPokemonID: 3})
	broken := NewService(flaky, agg, builder, ServiceConfig{})
	if broken.StoreHealthy(context.Background()) {
		t.Error("failing store should report unhealthy")
	}
}

type flakyStore struct {
	cache.Store
	getErr error
	setErr error
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, data, ttl)
}
