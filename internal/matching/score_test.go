package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmatch/internal/domain"
	"propmatch/internal/matching"
)

func ponsonby(value int64) domain.Property {
	return domain.Property{
		ID:             "p1",
		Address:        "12 Example Street, Ponsonby",
		Suburb:         ptr("Ponsonby"),
		PropertyType:   "house",
		EstimatedValue: ptr(value),
	}
}

func suburbAd(budget int64) domain.WantedAd {
	return domain.WantedAd{
		ID:              "w1",
		Budget:          budget,
		PropertyTypes:   ptr(`["apartment"]`),
		TargetLocations: []domain.TargetLocation{{LocationType: domain.LocationSuburb, Name: "Ponsonby"}},
	}
}

func TestEvaluate_Examples(t *testing.T) {
	s := matching.NewScorer(matching.DefaultWeights())

	t.Run("direct address", func(t *testing.T) {
		ad := domain.WantedAd{
			Budget:          1, // nowhere near
			TargetAddresses: []domain.TargetAddress{{Address: "12 Example Street"}},
		}
		res, ok := s.Evaluate(ponsonby(1_000_000), ad)
		require.True(t, ok)
		assert.Equal(t, 100, res.Score)
		assert.Equal(t, domain.MatchDirect, res.Type)
		assert.Equal(t, []string{"direct_address"}, res.MatchedOn)
	})

	t.Run("budget within tolerance", func(t *testing.T) {
		res, ok := s.Evaluate(ponsonby(1_000_000), suburbAd(1_050_000))
		require.True(t, ok)
		assert.Equal(t, 70, res.Score)
		assert.Equal(t, domain.MatchCriteria, res.Type)
		assert.Equal(t, []string{"location", "budget"}, res.MatchedOn)
	})

	t.Run("budget partial", func(t *testing.T) {
		res, ok := s.Evaluate(ponsonby(1_000_000), suburbAd(1_350_000))
		require.True(t, ok)
		assert.Equal(t, 55, res.Score)
		assert.Equal(t, []string{"location", "budget_partial"}, res.MatchedOn)
	})

	t.Run("location only is kept at threshold", func(t *testing.T) {
		res, ok := s.Evaluate(ponsonby(1_000_000), suburbAd(1_500_000))
		require.True(t, ok)
		assert.Equal(t, 40, res.Score)
		assert.Equal(t, []string{"location"}, res.MatchedOn)
	})

	t.Run("no location overlap", func(t *testing.T) {
		ad := suburbAd(1_000_000)
		ad.PropertyTypes = ptr(`["house"]`)
		ad.BedroomsMin = ptr(1)
		ad.TargetLocations = []domain.TargetLocation{{LocationType: domain.LocationSuburb, Name: "Remuera"}}
		p := ponsonby(1_000_000)
		p.Bedrooms = ptr(3)
		_, ok := s.Evaluate(p, ad)
		assert.False(t, ok)
	})
}

func TestEvaluate_BudgetBoundaries(t *testing.T) {
	s := matching.NewScorer(matching.DefaultWeights())

	res, ok := s.Evaluate(ponsonby(1_000_000), suburbAd(800_000)) // diff == tolerance
	require.True(t, ok)
	assert.Contains(t, res.MatchedOn, "budget")

	res, ok = s.Evaluate(ponsonby(1_000_000), suburbAd(1_400_000)) // diff == 2x tolerance
	require.True(t, ok)
	assert.Contains(t, res.MatchedOn, "budget_partial")

	p := ponsonby(0)
	p.EstimatedValue = nil
	res, ok = s.Evaluate(p, suburbAd(1_000_000))
	require.True(t, ok)
	assert.Equal(t, []string{"location"}, res.MatchedOn)
}

func TestEvaluate_AllCriteria(t *testing.T) {
	s := matching.NewScorer(matching.DefaultWeights())
	p := ponsonby(1_000_000)
	p.Bedrooms = ptr(3)
	p.Features = ptr(`["pool","garage","deck"]`)

	ad := suburbAd(1_000_000)
	ad.PropertyTypes = ptr(`["House"]`)
	ad.BedroomsMin = ptr(2)
	ad.BedroomsMax = ptr(4)
	ad.Features = ptr(`["Pool","Garage"]`)

	res, ok := s.Evaluate(p, ad)
	require.True(t, ok)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, []string{"location", "budget", "propertyType", "bedrooms", "features"}, res.MatchedOn)
}

func TestEvaluate_BedroomsNeedABound(t *testing.T) {
	s := matching.NewScorer(matching.DefaultWeights())
	p := ponsonby(5_000_000)
	p.Bedrooms = ptr(3)

	res, ok := s.Evaluate(p, suburbAd(1))
	require.True(t, ok)
	assert.NotContains(t, res.MatchedOn, "bedrooms")

	ad := suburbAd(1)
	ad.BedroomsMax = ptr(2)
	res, _ = s.Evaluate(p, ad)
	assert.NotContains(t, res.MatchedOn, "bedrooms")

	ad.BedroomsMax = ptr(3)
	res, _ = s.Evaluate(p, ad)
	assert.Contains(t, res.MatchedOn, "bedrooms")
}

func TestEvaluate_FeaturesRoundHalfUp(t *testing.T) {
	s := matching.NewScorer(matching.DefaultWeights())
	p := ponsonby(5_000_000)
	p.PropertyType = ""
	p.Features = ptr(`["a"]`)

	ad := suburbAd(1)
	ad.Features = ptr(`["a","b","c","d","e","f","g","h"]`) // 1/8*10 = 1.25
	res, ok := s.Evaluate(p, ad)
	require.True(t, ok)
	assert.Equal(t, 41, res.Score)

	ad.Features = ptr(`["a","b","c","d"]`) // 2.5 rounds up
	res, _ = s.Evaluate(p, ad)
	assert.Equal(t, 43, res.Score)

	ad.Features = ptr(`["x"]`)
	res, _ = s.Evaluate(p, ad)
	assert.NotContains(t, res.MatchedOn, "features")
}

func TestCompose_ThresholdAndBounds(t *testing.T) {
	w := matching.DefaultWeights()
	w.Threshold = 60
	s := matching.NewScorer(w)

	_, ok := s.Compose(matching.AreaMatch, ponsonby(1_000_000), matching.NormalizeWantedAd(suburbAd(1_350_000)))
	assert.False(t, ok, "55 is below a threshold of 60")

	w = matching.DefaultWeights()
	w.Location = 90
	s = matching.NewScorer(w)
	res, ok := s.Compose(matching.AreaMatch, ponsonby(1_000_000), matching.NormalizeWantedAd(suburbAd(1_000_000)))
	require.True(t, ok)
	assert.Equal(t, 100, res.Score)

	_, ok = s.Compose(matching.NoMatch, ponsonby(1_000_000), matching.Criteria{})
	assert.False(t, ok)
}
