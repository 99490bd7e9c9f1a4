package app

import (
	"context"
	"fmt"
	"time"

	"propmatch/internal/domain"
)

func propertyMatchesKey(id string) string { return fmt.Sprintf("matches:property:%s", id) }
func wantedAdMatchesKey(id string) string { return fmt.Sprintf("matches:wanted_ad:%s", id) }

// QueryService serves stored matches, read-through cached.
type QueryService struct {
	repo     domain.MatchStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.MatchStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ListPropertyMatches(ctx context.Context, id string) ([]domain.Match, error) {
	return s.cached(ctx, propertyMatchesKey(id), func() ([]domain.Match, error) {
		return s.repo.ListMatchesByProperty(ctx, id)
	})
}

func (s *QueryService) ListWantedAdMatches(ctx context.Context, id string) ([]domain.Match, error) {
	return s.cached(ctx, wantedAdMatchesKey(id), func() ([]domain.Match, error) {
		return s.repo.ListMatchesByWantedAd(ctx, id)
	})
}

func (s *QueryService) CountPropertyMatches(ctx context.Context, id string) (domain.MatchCounts, error) {
	direct, err := s.repo.CountMatches(ctx, id, domain.MatchDirect)
	if err != nil {
		return domain.MatchCounts{}, err
	}
	criteria, err := s.repo.CountMatches(ctx, id, domain.MatchCriteria)
	if err != nil {
		return domain.MatchCounts{}, err
	}
	return domain.MatchCounts{Direct: direct, Criteria: criteria}, nil
}

func (s *QueryService) cached(ctx context.Context, key string, load func() ([]domain.Match, error)) ([]domain.Match, error) {
	var out []domain.Match
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	ms, err := load()
	if err != nil {
		return nil, err
	}
	// copy so callers mutating the result cannot touch what was cached
	out = make([]domain.Match, len(ms))
	copy(out, ms)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}
