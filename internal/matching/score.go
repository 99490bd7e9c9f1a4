package matching

import (
	"math"

	"propmatch/internal/domain"
)

// Result is a scored pair ready for reconciliation.
type Result struct {
	Score     int
	Type      domain.MatchType
	MatchedOn []string
}

// Scorer turns a location classification into a score using its weights.
type Scorer struct {
	w Weights
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// Evaluate classifies and scores one pair. ok is false when the pair must
// be discarded.
func (s *Scorer) Evaluate(p domain.Property, ad domain.WantedAd) (Result, bool) {
	c := ClassifyLocation(p, ad)
	return s.Compose(c, p, NormalizeWantedAd(ad))
}

// Compose scores an already classified pair. Direct matches short-circuit
// at the direct score; area matches accumulate weighted criteria and are
// dropped below the threshold.
func (s *Scorer) Compose(c Classification, p domain.Property, crit Criteria) (Result, bool) {
	switch c {
	case DirectMatch:
		return Result{
			Score:     clampScore(s.w.Direct),
			Type:      domain.MatchDirect,
			MatchedOn: []string{TagDirectAddress},
		}, true
	case AreaMatch:
	default:
		return Result{}, false
	}

	score := s.w.Location
	on := []string{TagLocation}

	if p.EstimatedValue != nil {
		switch budgetFit(*p.EstimatedValue, crit.Budget, s.w.TolerancePct) {
		case budgetFull:
			score += s.w.Budget
			on = append(on, TagBudget)
		case budgetPartial:
			score += s.w.BudgetPartial
			on = append(on, TagBudgetPartial)
		}
	}

	if p.PropertyType != "" && crit.PropertyTypes.Has(p.PropertyType) {
		score += s.w.PropertyType
		on = append(on, TagPropertyType)
	}

	if p.Bedrooms != nil && (crit.BedroomsMin != nil || crit.BedroomsMax != nil) {
		beds := *p.Bedrooms
		if (crit.BedroomsMin == nil || beds >= *crit.BedroomsMin) &&
			(crit.BedroomsMax == nil || beds <= *crit.BedroomsMax) {
			score += s.w.Bedrooms
			on = append(on, TagBedrooms)
		}
	}

	if pts, hit := featurePoints(NormalizePropertyFeatures(p), crit.Features, s.w.Features); hit {
		score += pts
		on = append(on, TagFeatures)
	}

	score = clampScore(score)
	if score < s.w.Threshold {
		return Result{}, false
	}
	return Result{Score: score, Type: domain.MatchCriteria, MatchedOn: on}, true
}

type budgetResult int

const (
	budgetMiss budgetResult = iota
	budgetPartial
	budgetFull
)

// budgetFit compares in integer arithmetic: diff <= value*pct/100.
func budgetFit(value, budget int64, pct int) budgetResult {
	diff := value - budget
	if diff < 0 {
		diff = -diff
	}
	lhs := diff * 100
	tol := value * int64(pct)
	switch {
	case lhs <= tol:
		return budgetFull
	case lhs <= 2*tol:
		return budgetPartial
	default:
		return budgetMiss
	}
}

// featurePoints reports the rounded fractional feature score and whether
// any wanted feature was present at all.
func featurePoints(have, want Tags, weight int) (int, bool) {
	if have.Len() == 0 || want.Len() == 0 {
		return 0, false
	}
	matching := 0
	for f := range want {
		if _, ok := have[f]; ok {
			matching++
		}
	}
	raw := math.Min(float64(weight), float64(matching)/float64(want.Len())*float64(weight))
	if raw <= 0 {
		return 0, false
	}
	return int(math.Floor(raw + 0.5)), true
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
