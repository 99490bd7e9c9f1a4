package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"propmatch/internal/adapters/observability"
	"propmatch/internal/domain"
	"propmatch/internal/matching"
)

// Engine runs the matching pipeline for one anchor property or wanted ad
// against every active candidate on the other side.
type Engine struct {
	props    domain.PropertyStore
	ads      domain.WantedAdStore
	matches  domain.MatchStore
	notifier domain.Notifier
	cache    domain.Cache
	scorer   *matching.Scorer
	rec      *Reconciler
	evalConc int
}

type Option func(*Engine)

func WithCache(c domain.Cache) Option { return func(e *Engine) { e.cache = c } }

func WithWeights(w matching.Weights) Option {
	return func(e *Engine) { e.scorer = matching.NewScorer(w) }
}

// WithEvalConcurrency bounds how many pairs are scored in parallel.
func WithEvalConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.evalConc = n
		}
	}
}

func NewEngine(p domain.PropertyStore, a domain.WantedAdStore, m domain.MatchStore, n domain.Notifier, opts ...Option) *Engine {
	e := &Engine{
		props:    p,
		ads:      a,
		matches:  m,
		notifier: n,
		scorer:   matching.NewScorer(matching.DefaultWeights()),
		rec:      NewReconciler(m),
		evalConc: 8,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

type candidate struct {
	prop domain.Property
	ad   domain.WantedAd
	crit matching.Criteria
}

type scoredPair struct {
	candidate
	res matching.Result
}

func (sp scoredPair) result() domain.MatchResult {
	return domain.MatchResult{
		PropertyID:  sp.prop.ID,
		WantedAdID:  sp.ad.ID,
		OwnerID:     sp.prop.OwnerID,
		OwnerUserID: sp.prop.OwnerUserID,
		Score:       sp.res.Score,
		MatchType:   sp.res.Type,
		MatchedOn:   sp.res.MatchedOn,
	}
}

func (sp scoredPair) match() domain.Match {
	return domain.Match{
		PropertyID: sp.prop.ID,
		WantedAdID: sp.ad.ID,
		MatchScore: sp.res.Score,
		MatchType:  sp.res.Type,
		MatchedOn:  sp.res.MatchedOn,
	}
}

func (e *Engine) ComputeMatchesForWantedAd(ctx context.Context, wantedAdID string) ([]domain.MatchResult, error) {
	pairs, err := e.pairsForWantedAd(ctx, wantedAdID)
	if err != nil {
		return nil, err
	}
	return results(pairs), nil
}

func (e *Engine) ComputeMatchesForProperty(ctx context.Context, propertyID string) ([]domain.MatchResult, error) {
	pairs, err := e.pairsForProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return results(pairs), nil
}

// RecalculateProperty computes, persists and notifies for one property and
// returns the number of newly created matches.
func (e *Engine) RecalculateProperty(ctx context.Context, propertyID string) (int, error) {
	pairs, err := e.pairsForProperty(ctx, propertyID)
	if err != nil {
		return 0, err
	}
	return e.persist(ctx, pairs)
}

func (e *Engine) RecalculateWantedAd(ctx context.Context, wantedAdID string) (int, error) {
	pairs, err := e.pairsForWantedAd(ctx, wantedAdID)
	if err != nil {
		return 0, err
	}
	return e.persist(ctx, pairs)
}

func (e *Engine) pairsForWantedAd(ctx context.Context, id string) ([]scoredPair, error) {
	ad, err := e.ads.GetWantedAd(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("wanted ad %s: %w", id, err)
	}
	if !ad.IsActive {
		return nil, nil
	}
	props, err := e.props.ListActiveProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	crit := matching.NormalizeWantedAd(ad)
	cands := make([]candidate, 0, len(props))
	for _, p := range props {
		cands = append(cands, candidate{prop: p, ad: ad, crit: crit})
	}
	return e.evaluate(ctx, cands)
}

func (e *Engine) pairsForProperty(ctx context.Context, id string) ([]scoredPair, error) {
	p, err := e.props.GetProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", id, err)
	}
	if !p.IsActive {
		return nil, nil
	}
	ads, err := e.ads.ListActiveWantedAds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wanted ads: %w", err)
	}
	cands := make([]candidate, 0, len(ads))
	for _, ad := range ads {
		cands = append(cands, candidate{prop: p, ad: ad, crit: matching.NormalizeWantedAd(ad)})
	}
	return e.evaluate(ctx, cands)
}

// evaluate scores candidates in parallel. Scoring has no side effects, so
// the only shared state is the per-index output slot.
func (e *Engine) evaluate(ctx context.Context, cands []candidate) ([]scoredPair, error) {
	out := make([]*scoredPair, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.evalConc)
	for i, c := range cands {
		if !c.prop.IsActive || !c.ad.IsActive {
			continue
		}
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cls := matching.ClassifyLocation(c.prop, c.ad)
			observability.ObservePair(cls.String())
			res, ok := e.scorer.Compose(cls, c.prop, c.crit)
			if ok {
				out[i] = &scoredPair{candidate: c, res: res}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pairs := make([]scoredPair, 0, len(out))
	for _, sp := range out {
		if sp != nil {
			pairs = append(pairs, *sp)
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].res.Score != pairs[j].res.Score {
			return pairs[i].res.Score > pairs[j].res.Score
		}
		if pairs[i].prop.ID != pairs[j].prop.ID {
			return pairs[i].prop.ID < pairs[j].prop.ID
		}
		return pairs[i].ad.ID < pairs[j].ad.ID
	})
	return pairs, nil
}

// persist reconciles every pair independently. A failed pair is logged and
// reported in the joined error without stopping the rest of the batch.
func (e *Engine) persist(ctx context.Context, pairs []scoredPair) (int, error) {
	var (
		created []NewMatch
		errs    []error
		dirty   = map[string]struct{}{}
	)
	for _, sp := range pairs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		out, _, err := e.rec.Reconcile(ctx, sp.match())
		if err != nil {
			log.Warn().Err(err).
				Str("property_id", sp.prop.ID).
				Str("wanted_ad_id", sp.ad.ID).
				Msg("reconcile match failed")
			errs = append(errs, fmt.Errorf("pair %s/%s: %w", sp.prop.ID, sp.ad.ID, err))
			continue
		}
		observability.ObserveReconcile(out.String())
		if out == Unchanged {
			continue
		}
		dirty[propertyMatchesKey(sp.prop.ID)] = struct{}{}
		dirty[wantedAdMatchesKey(sp.ad.ID)] = struct{}{}
		if out == Created {
			created = append(created, NewMatch{Property: sp.prop, WantedAd: sp.ad, Score: sp.res.Score, Type: sp.res.Type})
		}
	}

	// Rows are already written: evict and notify even if ctx is done.
	sctx := context.WithoutCancel(ctx)
	if e.cache != nil {
		for key := range dirty {
			if err := e.cache.Del(sctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("match cache eviction failed")
			}
		}
	}
	e.dispatch(sctx, created)
	return len(created), errors.Join(errs...)
}

// dispatch is best-effort: a failed notification never undoes or retries
// the match writes that produced it.
func (e *Engine) dispatch(ctx context.Context, created []NewMatch) {
	if e.notifier == nil || len(created) == 0 {
		return
	}
	for _, n := range BuildNotifications(created) {
		if err := e.notifier.Notify(ctx, n); err != nil {
			log.Error().Err(err).
				Str("user_id", n.UserID).
				Str("type", n.Type).
				Msg("notification dispatch failed")
			continue
		}
		log.Debug().Str("user_id", n.UserID).Str("type", n.Type).Msg("notification sent")
	}
}

func results(pairs []scoredPair) []domain.MatchResult {
	out := make([]domain.MatchResult, 0, len(pairs))
	for _, sp := range pairs {
		out = append(out, sp.result())
	}
	return out
}
