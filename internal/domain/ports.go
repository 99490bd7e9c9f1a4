package domain

import "context"

type PropertyStore interface {
	GetProperty(ctx context.Context, id string) (Property, error)
	ListActiveProperties(ctx context.Context) ([]Property, error)
	ListPropertyIDs(ctx context.Context) ([]string, error)
}

type WantedAdStore interface {
	// Both read paths return ads with TargetAddresses and TargetLocations loaded.
	GetWantedAd(ctx context.Context, id string) (WantedAd, error)
	ListActiveWantedAds(ctx context.Context) ([]WantedAd, error)
}

type MatchStore interface {
	// Write paths
	CreateMatch(ctx context.Context, m Match) (Match, error)
	UpdateMatch(ctx context.Context, m Match) error

	// Read paths
	GetMatch(ctx context.Context, propertyID, wantedAdID string) (Match, error)
	CountMatches(ctx context.Context, propertyID string, t MatchType) (int, error)
	ListMatchesByProperty(ctx context.Context, propertyID string) ([]Match, error)
	ListMatchesByWantedAd(ctx context.Context, wantedAdID string) ([]Match, error)
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
