package services

import (
	"context"
	"strings"
	"time"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/db/repositories"
	"logitrack/tracker/internal/metrics"
	"logitrack/tracker/internal/models/dtos"
)

// Search tiers, in the order they are tried.
const (
	TierExact     = "exact"
	TierContains  = "contains"
	TierContainer = "container"
	TierNone      = "none"
)

// SearchStore is the query side used by SearchService.
type SearchStore interface {
	Exact(ctx context.Context, values []string, f repositories.SearchFilter) ([]dtos.SearchRow, error)
	Contains(ctx context.Context, q string, f repositories.SearchFilter) ([]dtos.SearchRow, error)
	ByIDs(ctx context.Context, ids []string, f repositories.SearchFilter) ([]dtos.SearchRow, error)
	ContainerShipmentIDs(ctx context.Context, q string, exactValues []string) ([]string, error)
}

type SearchService struct {
	repo    SearchStore
	cache   common.CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
}

func NewSearchService(repo SearchStore, cache common.CacheInterface, ttl time.Duration, m *metrics.MetricsRegistry) *SearchService {
	return &SearchService{repo: repo, cache: cache, ttl: ttl, metrics: m}
}

// Search runs the tiers in order and stops at the first one with rows.
// Queries shorter than the minimum length return no rows.
func (s *SearchService) Search(ctx context.Context, params dtos.SearchParams) (*dtos.SearchResult, error) {
	params = NormalizeSearchParams(params)
	if len([]rune(params.Q)) < constants.SearchMinQueryLen {
		return &dtos.SearchResult{Rows: []dtos.SearchRow{}, Tier: TierNone}, nil
	}

	key := searchCacheKey(params)
	if s.cache != nil {
		if cached, ok := common.GetJSON[dtos.SearchResult](s.cache, key); ok {
			s.countCache(true)
			return &cached, nil
		}
		s.countCache(false)
	}

	res, err := s.search(ctx, params)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SearchTierHitsTotal.WithLabelValues(res.Tier).Inc()
	}
	if s.cache != nil {
		common.SetJSON(s.cache, key, res, s.ttl)
	}
	return res, nil
}

func (s *SearchService) search(ctx context.Context, p dtos.SearchParams) (*dtos.SearchResult, error) {
	f := repositories.SearchFilter{
		POL:             p.POL,
		POD:             p.POD,
		PlaceOfDelivery: p.PlaceOfDelivery,
		Mode:            p.Mode,
		SortBy:          p.SortBy,
		Dir:             p.Dir,
		Limit:           constants.SearchResultLimit,
	}
	variants := QueryVariants(p.Q)

	rows, err := s.repo.Exact(ctx, variants, f)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &dtos.SearchResult{Rows: rows, Tier: TierExact}, nil
	}

	rows, err = s.repo.Contains(ctx, p.Q, f)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &dtos.SearchResult{Rows: rows, Tier: TierContains}, nil
	}

	ids, err := s.repo.ContainerShipmentIDs(ctx, p.Q, variants)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		rows, err = s.repo.ByIDs(ctx, ids, f)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return &dtos.SearchResult{Rows: rows, Tier: TierContainer}, nil
		}
	}
	return &dtos.SearchResult{Rows: []dtos.SearchRow{}, Tier: TierNone}, nil
}

// NormalizeSearchParams trims every field, maps ALL to no filter, uppercases
// mode, sort and direction, and applies the ETD/DESC defaults.
func NormalizeSearchParams(p dtos.SearchParams) dtos.SearchParams {
	filter := func(v string) string {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, constants.FilterAll) {
			return ""
		}
		return v
	}
	out := dtos.SearchParams{
		Q:               strings.TrimSpace(p.Q),
		POL:             filter(p.POL),
		POD:             filter(p.POD),
		PlaceOfDelivery: filter(p.PlaceOfDelivery),
		Mode:            strings.ToUpper(filter(p.Mode)),
		SortBy:          constants.SortByETD,
		Dir:             constants.SortDesc,
	}
	if strings.EqualFold(strings.TrimSpace(p.SortBy), constants.SortByETA) {
		out.SortBy = constants.SortByETA
	}
	if strings.EqualFold(strings.TrimSpace(p.Dir), constants.SortAsc) {
		out.Dir = constants.SortAsc
	}
	return out
}

// QueryVariants returns the distinct literal, lower and upper forms of q.
func QueryVariants(q string) []string {
	out := []string{q}
	for _, v := range []string{strings.ToLower(q), strings.ToUpper(q)} {
		dup := false
		for _, seen := range out {
			if seen == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func searchCacheKey(p dtos.SearchParams) string {
	return string(constants.CachePrefixSearch) + strings.Join([]string{
		p.Q, p.POL, p.POD, p.PlaceOfDelivery, p.Mode, p.SortBy, p.Dir,
	}, "|")
}

func (s *SearchService) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues("search").Inc()
	} else {
		s.metrics.CacheMissesTotal.WithLabelValues("search").Inc()
	}
}
