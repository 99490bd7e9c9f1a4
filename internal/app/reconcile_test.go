package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmatch/internal/app"
	"propmatch/internal/domain"
)

func TestReconcile_CreateUpdateUnchanged(t *testing.T) {
	s := newMemStore()
	r := app.NewReconciler(s)
	ctx := context.Background()

	want := domain.Match{PropertyID: "p", WantedAdID: "w", MatchScore: 55, MatchType: domain.MatchCriteria, MatchedOn: []string{"location", "budget_partial"}}

	out, m, err := r.Reconcile(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, app.Created, out)
	assert.NotEmpty(t, m.ID)

	out, _, err = r.Reconcile(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, app.Unchanged, out)

	// matchedOn alone does not trigger a write
	same := want
	same.MatchedOn = []string{"location"}
	out, _, err = r.Reconcile(ctx, same)
	require.NoError(t, err)
	assert.Equal(t, app.Unchanged, out)

	want.MatchScore = 70
	want.MatchedOn = []string{"location", "budget"}
	out, m2, err := r.Reconcile(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, app.Updated, out)
	assert.Equal(t, m.ID, m2.ID, "update keeps the row identity")
	assert.Equal(t, 1, s.creates)
	assert.Equal(t, 1, s.updates)
}

func TestReconcile_ConflictFallsBackToUpdate(t *testing.T) {
	s := newMemStore()
	s.raceOnCreate = &domain.Match{PropertyID: "p", WantedAdID: "w", MatchScore: 40, MatchType: domain.MatchCriteria}
	r := app.NewReconciler(s)

	want := domain.Match{PropertyID: "p", WantedAdID: "w", MatchScore: 100, MatchType: domain.MatchDirect, MatchedOn: []string{"direct_address"}}
	out, m, err := r.Reconcile(context.Background(), want)
	require.NoError(t, err)
	assert.Equal(t, app.Updated, out)
	assert.Equal(t, "racer", m.ID)
	assert.Len(t, s.matches, 1)
	assert.Equal(t, 100, s.matches[[2]string{"p", "w"}].MatchScore)
}

func TestReconcile_ConflictWithSameValuesIsUnchanged(t *testing.T) {
	s := newMemStore()
	want := domain.Match{PropertyID: "p", WantedAdID: "w", MatchScore: 100, MatchType: domain.MatchDirect}
	s.raceOnCreate = &want
	r := app.NewReconciler(s)

	out, _, err := r.Reconcile(context.Background(), want)
	require.NoError(t, err)
	assert.Equal(t, app.Unchanged, out)
	assert.Equal(t, 0, s.updates)
}

func TestReconcile_StoreError(t *testing.T) {
	s := newMemStore()
	s.failGet = errBoom
	_, _, err := app.NewReconciler(s).Reconcile(context.Background(), domain.Match{PropertyID: "p", WantedAdID: "w"})
	assert.ErrorIs(t, err, errBoom)
}
