package geo

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"alerthub_backend/internal/geo/geoapify"
	"alerthub_backend/platform/apperr"
	"alerthub_backend/platform/logger"
)

func testLogger() *logger.Logger {
	return logger.New("development")
}

type stubProvider struct {
	mu           sync.Mutex
	geocodeCalls int
	reverseCalls int
	geocode      func(endpoint geoapify.Endpoint, text string, limit int) ([]geoapify.Item, error)
	reverse      func(lat, lon float64, zoom int) ([]geoapify.Item, error)
}

func (p *stubProvider) Geocode(_ context.Context, endpoint geoapify.Endpoint, text string, limit int) ([]geoapify.Item, error) {
	p.mu.Lock()
	p.geocodeCalls++
	p.mu.Unlock()
	if p.geocode == nil {
		return nil, nil
	}
	return p.geocode(endpoint, text, limit)
}

func (p *stubProvider) Reverse(_ context.Context, lat, lon float64, zoom int) ([]geoapify.Item, error) {
	p.mu.Lock()
	p.reverseCalls++
	p.mu.Unlock()
	if p.reverse == nil {
		return nil, nil
	}
	return p.reverse(lat, lon, zoom)
}

func (p *stubProvider) calls() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.geocodeCalls, p.reverseCalls
}

func coord(value float64) geoapify.Coordinate {
	raw := strconv.FormatFloat(value, 'f', -1, 64)
	var c geoapify.Coordinate
	if err := c.UnmarshalJSON([]byte(raw)); err != nil {
		panic(err)
	}
	return c
}

func item(formatted string, lat, lon, importance float64) geoapify.Item {
	return geoapify.Item{
		Formatted: formatted,
		Lat:       coord(lat),
		Lon:       coord(lon),
		Rank:      geoapify.Rank{Importance: importance},
	}
}

func newTestService(provider Provider) *Service {
	return NewService(provider, NewMemoryCache(), 5*time.Minute, true, testLogger())
}

func TestSearchUnconfigured(t *testing.T) {
	svc := NewService(&stubProvider{}, NewMemoryCache(), time.Minute, false, testLogger())

	_, err := svc.Search(context.Background(), "Calle 10", 5, false)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	provider := &stubProvider{}
	svc := newTestService(provider)

	_, err := svc.Search(context.Background(), "   ", 5, false)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("err = %v, want bad request", err)
	}
	if calls, _ := provider.calls(); calls != 0 {
		t.Fatalf("provider called %d times for an empty query", calls)
	}
}

func TestSearchRanksAndDeduplicates(t *testing.T) {
	provider := &stubProvider{
		geocode: func(_ geoapify.Endpoint, _ string, _ int) ([]geoapify.Item, error) {
			return []geoapify.Item{
				item("Calle 10, Bogota", 4.7110, -74.0721, 0),
				item("Calle 10, Medellin, Antioquia", 6.2442, -75.5812, 0),
				// Same coordinate as above with a weaker name; the
				// higher-scoring duplicate must win.
				item("Calle 10", 6.2442, -75.5812, 0),
			}, nil
		},
	}
	svc := newTestService(provider)

	payload, err := svc.Search(context.Background(), "Calle 10", 5, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(payload.Results) != 2 {
		t.Fatalf("got %d results, want 2 after dedupe: %+v", len(payload.Results), payload.Results)
	}
	if payload.Results[0].DisplayName != "Calle 10, Medellin, Antioquia" {
		t.Fatalf("top result = %q", payload.Results[0].DisplayName)
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	provider := &stubProvider{
		geocode: func(_ geoapify.Endpoint, _ string, limit int) ([]geoapify.Item, error) {
			if limit < providerFloor {
				t.Errorf("provider limit = %d, want at least %d", limit, providerFloor)
			}
			var items []geoapify.Item
			for i := 0; i < 8; i++ {
				items = append(items, item("Calle 10, Medellin", 6.2+float64(i)/1000, -75.58, 0))
			}
			return items, nil
		},
	}
	svc := newTestService(provider)

	payload, err := svc.Search(context.Background(), "Calle 10", 2, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(payload.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(payload.Results))
	}
}

func TestSearchCachesPayload(t *testing.T) {
	provider := &stubProvider{
		geocode: func(_ geoapify.Endpoint, _ string, _ int) ([]geoapify.Item, error) {
			return []geoapify.Item{item("Calle 10, Medellin", 6.2442, -75.5812, 0)}, nil
		},
	}
	svc := newTestService(provider)
	ctx := context.Background()

	first, err := svc.Search(ctx, "Calle 10", 5, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	callsAfterFirst, _ := provider.calls()
	if callsAfterFirst == 0 {
		t.Fatal("provider never called")
	}

	second, err := svc.Search(ctx, "calle 10", 5, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls, _ := provider.calls(); calls != callsAfterFirst {
		t.Fatalf("cache miss on repeated query: %d calls, want %d", calls, callsAfterFirst)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("cached payload differs: %s vs %s", a, b)
	}
}

func TestSearchCachesEmptyResults(t *testing.T) {
	provider := &stubProvider{}
	svc := newTestService(provider)
	ctx := context.Background()

	payload, err := svc.Search(ctx, "nowhere at all", 5, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(payload.Results) != 0 {
		t.Fatalf("got %d results, want 0", len(payload.Results))
	}
	callsAfterFirst, _ := provider.calls()

	if _, err := svc.Search(ctx, "nowhere at all", 5, false); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls, _ := provider.calls(); calls != callsAfterFirst {
		t.Fatal("empty result was not cached")
	}
}

func TestSearchStrictUsesBothEndpointsAndFewVariants(t *testing.T) {
	var mu sync.Mutex
	endpoints := make(map[geoapify.Endpoint]bool)
	variants := make(map[string]bool)

	provider := &stubProvider{
		geocode: func(endpoint geoapify.Endpoint, text string, _ int) ([]geoapify.Item, error) {
			mu.Lock()
			endpoints[endpoint] = true
			variants[text] = true
			mu.Unlock()
			return nil, nil
		},
	}
	svc := newTestService(provider)

	if _, err := svc.Search(context.Background(), "Calle 10 # 43-12", 5, true); err != nil {
		t.Fatalf("Search: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !endpoints[geoapify.EndpointAutocomplete] || !endpoints[geoapify.EndpointSearch] {
		t.Fatalf("strict search endpoints = %v, want autocomplete and search", endpoints)
	}
	if len(variants) > maxStrictVariants {
		t.Fatalf("strict search used %d variants, want at most %d", len(variants), maxStrictVariants)
	}
}

func TestSearchLooseVariantsCapped(t *testing.T) {
	var mu sync.Mutex
	variants := make(map[string]bool)

	provider := &stubProvider{
		geocode: func(endpoint geoapify.Endpoint, text string, _ int) ([]geoapify.Item, error) {
			mu.Lock()
			if endpoint != geoapify.EndpointSearch {
				t.Errorf("loose search hit endpoint %q", endpoint)
			}
			variants[text] = true
			mu.Unlock()
			return nil, nil
		},
	}
	svc := newTestService(provider)

	if _, err := svc.Search(context.Background(), "Carrera 43A # 10-12, Medellin", 5, false); err != nil {
		t.Fatalf("Search: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(variants) > maxLooseVariants {
		t.Fatalf("loose search used %d variants, want at most %d", len(variants), maxLooseVariants)
	}
}

func TestSearchProviderRateLimitedYieldsEmpty(t *testing.T) {
	provider := &stubProvider{
		geocode: func(geoapify.Endpoint, string, int) ([]geoapify.Item, error) {
			return nil, geoapify.ErrRateLimited
		},
	}
	svc := newTestService(provider)

	payload, err := svc.Search(context.Background(), "Calle 10", 5, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(payload.Results) != 0 {
		t.Fatalf("got %d results, want 0", len(payload.Results))
	}
}

func TestSearchSkipsUnparsableCoordinates(t *testing.T) {
	bad := geoapify.Item{Formatted: "Calle 10, Medellin"}
	if err := bad.Lat.UnmarshalJSON([]byte(`"not-a-number"`)); err != nil {
		t.Fatal(err)
	}
	if err := bad.Lon.UnmarshalJSON([]byte(`"-75.58"`)); err != nil {
		t.Fatal(err)
	}

	provider := &stubProvider{
		geocode: func(geoapify.Endpoint, string, int) ([]geoapify.Item, error) {
			return []geoapify.Item{bad, item("Calle 10, Medellin", 6.2442, -75.5812, 0)}, nil
		},
	}
	svc := newTestService(provider)

	payload, err := svc.Search(context.Background(), "Calle 10", 5, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(payload.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(payload.Results))
	}
}

func TestSearchUsedQueryReportsWinningVariant(t *testing.T) {
	provider := &stubProvider{
		geocode: func(_ geoapify.Endpoint, text string, _ int) ([]geoapify.Item, error) {
			// Only the city-hinted variant finds anything.
			if text == "Calle 10 # 43-12, "+defaultCityHint {
				return []geoapify.Item{item("Calle 10 # 43-12, Medellin", 6.2442, -75.5812, 0)}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(provider)

	payload, err := svc.Search(context.Background(), "Calle 10 # 43-12", 5, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(payload.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(payload.Results))
	}
	if payload.UsedQuery != "Calle 10 # 43-12, "+defaultCityHint {
		t.Fatalf("usedQuery = %q", payload.UsedQuery)
	}
}

func TestSearchUsedQueryReportedForRawQuery(t *testing.T) {
	provider := &stubProvider{
		geocode: func(_ geoapify.Endpoint, text string, _ int) ([]geoapify.Item, error) {
			if text == "Parque Berrio" {
				return []geoapify.Item{item("Parque Berrio, Medellin", 6.2518, -75.5636, 0)}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(provider)

	payload, err := svc.Search(context.Background(), "Parque Berrio", 5, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(payload.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(payload.Results))
	}
	// The winning variant is reported even when it matches the raw query.
	if payload.UsedQuery != "Parque Berrio" {
		t.Fatalf("usedQuery = %q, want %q", payload.UsedQuery, "Parque Berrio")
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-3, minLimit},
		{0, minLimit},
		{1, 1},
		{7, 7},
		{maxLimit, maxLimit},
		{25, maxLimit},
	}
	for _, tc := range cases {
		if got := clampLimit(tc.in); got != tc.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestReverseZoomFallback(t *testing.T) {
	var zooms []int
	provider := &stubProvider{
		reverse: func(_, _ float64, zoom int) ([]geoapify.Item, error) {
			zooms = append(zooms, zoom)
			if zoom == 14 {
				return []geoapify.Item{item("Comuna 13, Medellin", 6.25, -75.62, 0)}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(provider)

	payload, err := svc.Reverse(context.Background(), 6.25, -75.62)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if payload.DisplayName != "Comuna 13, Medellin" {
		t.Fatalf("display name = %q", payload.DisplayName)
	}
	if len(zooms) != 3 || zooms[0] != 18 || zooms[1] != 16 || zooms[2] != 14 {
		t.Fatalf("zoom order = %v, want [18 16 14]", zooms)
	}
}

func TestReverseAddressFallbacks(t *testing.T) {
	provider := &stubProvider{
		reverse: func(_, _ float64, _ int) ([]geoapify.Item, error) {
			return []geoapify.Item{{
				Lat:      coord(6.28),
				Lon:      coord(-75.63),
				Street:   "Vereda El Llano",
				District: "Corregimiento San Cristobal",
				Village:  "San Cristobal",
				County:   "Antioquia",
			}}, nil
		},
	}
	svc := newTestService(provider)

	payload, err := svc.Reverse(context.Background(), 6.28, -75.63)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}

	addr := payload.Address
	if addr.Residential != "Vereda El Llano" || addr.Pedestrian != "Vereda El Llano" {
		t.Errorf("street aliases = %q / %q, want the street in both", addr.Residential, addr.Pedestrian)
	}
	if addr.Neighbourhood != "Corregimiento San Cristobal" {
		t.Errorf("neighbourhood = %q, want the district fallback", addr.Neighbourhood)
	}
	if addr.City != "San Cristobal" {
		t.Errorf("city = %q, want the village fallback", addr.City)
	}
	if addr.Town != "San Cristobal" {
		t.Errorf("town = %q, want the resolved city", addr.Town)
	}
	if addr.Municipality != "Antioquia" {
		t.Errorf("municipality = %q, want the county fallback", addr.Municipality)
	}
}

func TestReverseNotFound(t *testing.T) {
	svc := newTestService(&stubProvider{})

	_, err := svc.Reverse(context.Background(), 6.25, -75.62)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestReverseCaches(t *testing.T) {
	provider := &stubProvider{
		reverse: func(_, _ float64, _ int) ([]geoapify.Item, error) {
			return []geoapify.Item{{
				Formatted: "Carrera 43A # 1-50, El Poblado, Medellin",
				Lat:       coord(6.21),
				Lon:       coord(-75.57),
				Street:    "Carrera 43A",
				City:      "Medellin",
			}}, nil
		},
	}
	svc := newTestService(provider)
	ctx := context.Background()

	first, err := svc.Reverse(ctx, 6.21, -75.57)
	if err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if first.Address.Road != "Carrera 43A" || first.Address.City != "Medellin" {
		t.Fatalf("address = %+v", first.Address)
	}
	if _, calls := provider.calls(); calls != 1 {
		t.Fatalf("reverse called %d times, want 1", calls)
	}

	if _, err := svc.Reverse(ctx, 6.21, -75.57); err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if _, calls := provider.calls(); calls != 1 {
		t.Fatal("cache miss on repeated reverse lookup")
	}
}

func TestMemoryCacheTTLExpiryTriggersRefetch(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Now()
	cache.now = func() time.Time { return now }

	provider := &stubProvider{
		geocode: func(geoapify.Endpoint, string, int) ([]geoapify.Item, error) {
			return []geoapify.Item{item("Calle 10, Medellin", 6.2442, -75.5812, 0)}, nil
		},
	}
	svc := NewService(provider, cache, 5*time.Minute, true, testLogger())
	ctx := context.Background()

	if _, err := svc.Search(ctx, "Calle 10", 5, false); err != nil {
		t.Fatalf("Search: %v", err)
	}
	callsAfterFirst, _ := provider.calls()

	now = now.Add(6 * time.Minute)
	if _, err := svc.Search(ctx, "Calle 10", 5, false); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls, _ := provider.calls(); calls <= callsAfterFirst {
		t.Fatal("expired entry did not trigger a refetch")
	}
}
