package matching

import (
	"strings"
	"unicode/utf8"

	"propmatch/internal/domain"
)

type Classification int

const (
	NoMatch Classification = iota
	AreaMatch
	DirectMatch
)

func (c Classification) String() string {
	switch c {
	case AreaMatch:
		return "area"
	case DirectMatch:
		return "direct"
	default:
		return "none"
	}
}

// minReverseContainLen guards the property-contains-target direction so a
// bare street number cannot match every address on the street.
const minReverseContainLen = 5

// ClassifyLocation decides how a property relates to an ad's location
// constraints. Target addresses are scanned in stored order before target
// locations, and within one address the direct test runs before the
// suburb/city test. The first hit wins.
func ClassifyLocation(p domain.Property, ad domain.WantedAd) Classification {
	propAddr := fold(p.Address)
	propSuburb := foldPtr(p.Suburb)
	propCity := foldPtr(p.City)

	for _, addr := range ad.TargetAddresses {
		if isDirectAddress(propAddr, fold(addr.Address)) {
			return DirectMatch
		}
		if s := foldPtr(addr.Suburb); s != "" && s == propSuburb {
			return AreaMatch
		}
		if c := foldPtr(addr.City); c != "" && c == propCity {
			return AreaMatch
		}
	}

	propRegion := foldPtr(p.Region)
	for _, loc := range ad.TargetLocations {
		name := fold(loc.Name)
		if name == "" {
			continue
		}
		switch domain.LocationType(strings.ToUpper(string(loc.LocationType))) {
		case domain.LocationSuburb:
			if name == propSuburb {
				return AreaMatch
			}
		case domain.LocationCity:
			if name == propCity {
				return AreaMatch
			}
		case domain.LocationRegion:
			if name == propRegion {
				return AreaMatch
			}
		}
	}
	return NoMatch
}

// both arguments are already folded
func isDirectAddress(propAddr, target string) bool {
	if propAddr == "" || target == "" {
		return false
	}
	if strings.Contains(target, propAddr) {
		return true
	}
	return utf8.RuneCountInString(target) > minReverseContainLen && strings.Contains(propAddr, target)
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func foldPtr(p *string) string {
	if p == nil {
		return ""
	}
	return fold(*p)
}
