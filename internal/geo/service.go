package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"alerthub_backend/internal/geo/geoapify"
	"alerthub_backend/platform/apperr"
	"alerthub_backend/platform/logger"
)

const (
	minLimit     = 1
	maxLimit     = 10
	defaultLimit = 5

	// The provider is always asked for at least this many items so the
	// scorer has material to rank even for small client limits.
	providerFloor = 6

	maxStrictVariants = 2
	maxLooseVariants  = 6

	fanoutWorkers = 4
)

var reverseZooms = []int{18, 16, 14}

// Provider is the upstream geocoding gateway the service fans out to.
type Provider interface {
	Geocode(ctx context.Context, endpoint geoapify.Endpoint, text string, limit int) ([]geoapify.Item, error)
	Reverse(ctx context.Context, lat, lon float64, zoom int) ([]geoapify.Item, error)
}

// Service resolves free-form addresses and coordinates through the provider,
// ranking and caching the results.
type Service struct {
	provider   Provider
	cache      Cache
	ttl        time.Duration
	configured bool
	log        *logger.Logger
}

// NewService wires the resolver. configured reports whether a provider API
// key is present; without one both operations answer 503.
func NewService(provider Provider, cache Cache, ttl time.Duration, configured bool, log *logger.Logger) *Service {
	return &Service{
		provider:   provider,
		cache:      cache,
		ttl:        ttl,
		configured: configured,
		log:        log,
	}
}

type subquery struct {
	variant  string
	endpoint geoapify.Endpoint
}

// Search resolves a free-form address query to ranked coordinate candidates.
func (s *Service) Search(ctx context.Context, query string, limit int, strict bool) (*SearchPayload, error) {
	if !s.configured {
		return nil, apperr.Unavailable("geocoding service is not configured")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.BadRequest("query must not be empty")
	}
	limit = clampLimit(limit)

	cacheKey := fmt.Sprintf("search:%s:limit=%d:strict=%t", strings.ToLower(query), limit, strict)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var payload SearchPayload
		if err := json.Unmarshal(cached, &payload); err == nil {
			return &payload, nil
		}
	}

	subqueries := buildSubqueries(query, strict)
	providerLimit := limit
	if providerLimit < providerFloor {
		providerLimit = providerFloor
	}

	// Indexed slots keep the merge order deterministic regardless of which
	// subquery finishes first.
	slots := make([][]geoapify.Item, len(subqueries))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fanoutWorkers)
	for i, sub := range subqueries {
		group.Go(func() error {
			items, err := s.provider.Geocode(groupCtx, sub.endpoint, sub.variant, providerLimit)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.log.UpstreamError("geoapify", string(sub.endpoint), err)
				}
				return nil
			}
			slots[i] = items
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "address search failed", err)
	}

	payload := s.rank(query, strict, limit, subqueries, slots)

	if encoded, err := json.Marshal(payload); err == nil {
		s.cache.Set(ctx, cacheKey, encoded, s.ttl)
	}
	return payload, nil
}

// rank flattens the subquery slots into scored candidates, deduplicates by
// coordinate keeping the higher score, and orders by score descending.
func (s *Service) rank(query string, strict bool, limit int, subqueries []subquery, slots [][]geoapify.Item) *SearchPayload {
	type slot struct {
		candidate candidate
		variant   string
	}

	byCoord := make(map[string]int)
	ordered := make([]slot, 0, limit*2)

	for i, items := range slots {
		variant := subqueries[i].variant
		for _, item := range items {
			lat, latOK := item.Lat.Float()
			lon, lonOK := item.Lon.Float()
			if !latOK || !lonOK {
				continue
			}

			result := SearchResult{
				DisplayName: item.DisplayName(),
				Lat:         lat,
				Lon:         lon,
			}
			score := scoreResult(result, item.Rank.Importance, query, strict)

			key := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
			if at, seen := byCoord[key]; seen {
				if score > ordered[at].candidate.score {
					ordered[at] = slot{candidate: candidate{result: result, score: score}, variant: variant}
				}
				continue
			}
			byCoord[key] = len(ordered)
			ordered = append(ordered, slot{candidate: candidate{result: result, score: score}, variant: variant})
		}
	}

	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].candidate.score > ordered[b].candidate.score
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	payload := &SearchPayload{
		Query:   query,
		Results: make([]SearchResult, 0, len(ordered)),
	}
	for _, entry := range ordered {
		payload.Results = append(payload.Results, entry.candidate.result)
	}
	// usedQuery names the variant behind the top candidate, even when that
	// variant is the raw query; the field is absent only for an empty pool.
	if len(ordered) > 0 {
		payload.UsedQuery = ordered[0].variant
	}
	return payload
}

// Reverse resolves coordinates to the nearest usable address, retrying at
// progressively coarser zoom levels.
func (s *Service) Reverse(ctx context.Context, lat, lon float64) (*ReversePayload, error) {
	if !s.configured {
		return nil, apperr.Unavailable("geocoding service is not configured")
	}

	cacheKey := "reverse:" + strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var payload ReversePayload
		if err := json.Unmarshal(cached, &payload); err == nil {
			return &payload, nil
		}
	}

	for _, zoom := range reverseZooms {
		items, err := s.provider.Reverse(ctx, lat, lon, zoom)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			s.log.UpstreamError("geoapify", "reverse", err)
			continue
		}

		for _, item := range items {
			if !item.HasAddress() {
				continue
			}
			payload := &ReversePayload{
				DisplayName: item.DisplayName(),
				Address:     buildReverseAddress(item),
			}
			if encoded, err := json.Marshal(payload); err == nil {
				s.cache.Set(ctx, cacheKey, encoded, s.ttl)
			}
			return payload, nil
		}
	}

	return nil, apperr.NotFound("no address found for those coordinates")
}

// buildReverseAddress maps a provider item onto the response vocabulary.
// Street doubles as road, residential, and pedestrian; the neighbourhood and
// municipal fields fall back through progressively coarser provider fields so
// sparse rural results still fill the payload.
func buildReverseAddress(item geoapify.Item) ReverseAddress {
	street := strings.TrimSpace(item.Street)
	city := item.PreferredCity()

	neighbourhood := strings.TrimSpace(item.Suburb)
	if neighbourhood == "" {
		neighbourhood = strings.TrimSpace(item.District)
	}

	town := strings.TrimSpace(item.Town)
	if town == "" {
		town = city
	}

	municipality := strings.TrimSpace(item.Municipality)
	if municipality == "" {
		municipality = strings.TrimSpace(item.County)
	}
	if municipality == "" {
		municipality = strings.TrimSpace(item.State)
	}

	return ReverseAddress{
		Road:          street,
		Residential:   street,
		Pedestrian:    street,
		HouseNumber:   strings.TrimSpace(item.HouseNumber),
		Neighbourhood: neighbourhood,
		Suburb:        strings.TrimSpace(item.Suburb),
		CityDistrict:  strings.TrimSpace(item.District),
		City:          city,
		Town:          town,
		Village:       strings.TrimSpace(item.Village),
		Municipality:  municipality,
	}
}

// buildSubqueries expands the query into the variant and endpoint pool the
// search fans out over. Strict mode stays close to the raw query but asks two
// endpoints; loose mode tries more phrasings against search only.
func buildSubqueries(query string, strict bool) []subquery {
	var variants []string
	var endpoints []geoapify.Endpoint

	if strict {
		variants = strictVariants(query)
		if len(variants) > maxStrictVariants {
			variants = variants[:maxStrictVariants]
		}
		endpoints = []geoapify.Endpoint{geoapify.EndpointAutocomplete, geoapify.EndpointSearch}
	} else {
		variants = buildAddressVariants(query)
		if len(variants) > maxLooseVariants {
			variants = variants[:maxLooseVariants]
		}
		endpoints = []geoapify.Endpoint{geoapify.EndpointSearch}
	}

	subqueries := make([]subquery, 0, len(variants)*len(endpoints))
	for _, variant := range variants {
		for _, endpoint := range endpoints {
			subqueries = append(subqueries, subquery{variant: variant, endpoint: endpoint})
		}
	}
	return subqueries
}

// clampLimit bounds a parsed limit to [minLimit, maxLimit]. Zero and negative
// values clamp to the minimum; the default applies only when the client sent
// no usable limit at all, which the handler resolves before calling in.
func clampLimit(limit int) int {
	if limit < minLimit {
		return minLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
