package matching

import (
	"encoding/json"
	"strings"

	"propmatch/internal/domain"
)

// Tags is a normalized set of lower-cased criterion values.
type Tags map[string]struct{}

func (t Tags) Has(v string) bool {
	_, ok := t[normTag(v)]
	return ok
}

func (t Tags) Len() int { return len(t) }

// Criteria holds the comparable fields extracted from a wanted ad.
type Criteria struct {
	Budget        int64
	BedroomsMin   *int
	BedroomsMax   *int
	PropertyTypes Tags
	Features      Tags
}

// NormalizeTags parses a stored JSON array of strings. Missing, null or
// malformed input yields an empty set, never an error.
func NormalizeTags(raw *string) Tags {
	out := Tags{}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return out
	}
	var items []any
	if err := json.Unmarshal([]byte(*raw), &items); err != nil {
		return out
	}
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		if n := normTag(s); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

func NormalizeWantedAd(ad domain.WantedAd) Criteria {
	return Criteria{
		Budget:        ad.Budget,
		BedroomsMin:   ad.BedroomsMin,
		BedroomsMax:   ad.BedroomsMax,
		PropertyTypes: NormalizeTags(ad.PropertyTypes),
		Features:      NormalizeTags(ad.Features),
	}
}

func NormalizePropertyFeatures(p domain.Property) Tags {
	return NormalizeTags(p.Features)
}

func normTag(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
