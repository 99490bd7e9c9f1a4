package app

import (
	"context"
	"errors"
	"fmt"

	"propmatch/internal/domain"
)

type Outcome int

const (
	Unchanged Outcome = iota
	Created
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Reconciler brings the stored match for a pair in line with a freshly
// computed one. Uniqueness per (property, wanted ad) is enforced by the
// store; the reconciler only decides which write to issue.
type Reconciler struct {
	store domain.MatchStore
}

func NewReconciler(s domain.MatchStore) *Reconciler {
	return &Reconciler{store: s}
}

func (r *Reconciler) Reconcile(ctx context.Context, want domain.Match) (Outcome, domain.Match, error) {
	cur, err := r.store.GetMatch(ctx, want.PropertyID, want.WantedAdID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		m, cerr := r.store.CreateMatch(ctx, want)
		if cerr == nil {
			return Created, m, nil
		}
		if !errors.Is(cerr, domain.ErrConflict) {
			return Unchanged, domain.Match{}, fmt.Errorf("create match: %w", cerr)
		}
		// Another writer inserted the pair first; take the update path once.
		cur, err = r.store.GetMatch(ctx, want.PropertyID, want.WantedAdID)
		if err != nil {
			return Unchanged, domain.Match{}, fmt.Errorf("reload match after conflict: %w", err)
		}
	case err != nil:
		return Unchanged, domain.Match{}, fmt.Errorf("get match: %w", err)
	}

	if cur.MatchScore == want.MatchScore && cur.MatchType == want.MatchType {
		return Unchanged, cur, nil
	}
	cur.MatchScore = want.MatchScore
	cur.MatchType = want.MatchType
	cur.MatchedOn = want.MatchedOn
	if err := r.store.UpdateMatch(ctx, cur); err != nil {
		return Unchanged, domain.Match{}, fmt.Errorf("update match: %w", err)
	}
	return Updated, cur, nil
}
