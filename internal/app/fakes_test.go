package app_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"propmatch/internal/domain"
)

// ---- fakes ----

type memStore struct {
	mu      sync.Mutex
	props   map[string]domain.Property
	ads     map[string]domain.WantedAd
	matches map[[2]string]domain.Match
	seq     int

	creates, updates int
	// raceOnCreate makes the next CreateMatch behave as if another writer
	// inserted the same pair first.
	raceOnCreate *domain.Match
	failGet      error
	// afterCreate runs after every successful CreateMatch.
	afterCreate func()
}

func newMemStore() *memStore {
	return &memStore{
		props:   map[string]domain.Property{},
		ads:     map[string]domain.WantedAd{},
		matches: map[[2]string]domain.Match{},
	}
}

func (s *memStore) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	p, ok := s.props[id]
	if !ok {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *memStore) ListActiveProperties(ctx context.Context) ([]domain.Property, error) {
	var out []domain.Property
	for _, p := range s.props {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListPropertyIDs(ctx context.Context) ([]string, error) {
	var out []string
	for id := range s.props {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStore) GetWantedAd(ctx context.Context, id string) (domain.WantedAd, error) {
	a, ok := s.ads[id]
	if !ok {
		return domain.WantedAd{}, domain.ErrNotFound
	}
	return a, nil
}

func (s *memStore) ListActiveWantedAds(ctx context.Context) ([]domain.WantedAd, error) {
	var out []domain.WantedAd
	for _, a := range s.ads {
		if a.IsActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetMatch(ctx context.Context, propertyID, wantedAdID string) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return domain.Match{}, s.failGet
	}
	m, ok := s.matches[[2]string{propertyID, wantedAdID}]
	if !ok {
		return domain.Match{}, domain.ErrNotFound
	}
	return m, nil
}

func (s *memStore) CreateMatch(ctx context.Context, m domain.Match) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{m.PropertyID, m.WantedAdID}
	if s.raceOnCreate != nil {
		winner := *s.raceOnCreate
		s.raceOnCreate = nil
		winner.ID = "racer"
		s.matches[key] = winner
	}
	if _, ok := s.matches[key]; ok {
		return domain.Match{}, fmt.Errorf("insert match: %w", domain.ErrConflict)
	}
	s.seq++
	m.ID = fmt.Sprintf("m%d", s.seq)
	s.matches[key] = m
	s.creates++
	if s.afterCreate != nil {
		s.afterCreate()
	}
	return m, nil
}

func (s *memStore) UpdateMatch(ctx context.Context, m domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{m.PropertyID, m.WantedAdID}
	if _, ok := s.matches[key]; !ok {
		return domain.ErrNotFound
	}
	s.matches[key] = m
	s.updates++
	return nil
}

func (s *memStore) CountMatches(ctx context.Context, propertyID string, t domain.MatchType) (int, error) {
	n := 0
	for k, m := range s.matches {
		if k[0] == propertyID && m.MatchType == t {
			n++
		}
	}
	return n, nil
}

func (s *memStore) ListMatchesByProperty(ctx context.Context, propertyID string) ([]domain.Match, error) {
	var out []domain.Match
	for k, m := range s.matches {
		if k[0] == propertyID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) ListMatchesByWantedAd(ctx context.Context, wantedAdID string) ([]domain.Match, error) {
	var out []domain.Match
	for k, m := range s.matches {
		if k[1] == wantedAdID {
			out = append(out, m)
		}
	}
	return out, nil
}

type recNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (n *recNotifier) Notify(ctx context.Context, note domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return n.err
}

var errBoom = errors.New("boom")

type fakeCache struct {
	store  map[string]any
	dels   []string
	delErr error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*[]domain.Match); ok {
		*d = v.([]domain.Match)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.delErr != nil {
		return c.delErr
	}
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

func ptr[T any](v T) *T { return &v }
