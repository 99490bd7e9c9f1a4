package domain

import "time"

type MatchType string

const (
	MatchDirect   MatchType = "DIRECT"
	MatchCriteria MatchType = "CRITERIA"
)

// Match is unique on (WantedAdID, PropertyID).
type Match struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"propertyId"`
	WantedAdID    string    `json:"wantedAdId"`
	MatchScore    int       `json:"matchScore"`
	MatchType     MatchType `json:"matchType"`
	MatchedOn     []string  `json:"matchedOn"`
	ViewedByOwner bool      `json:"viewedByOwner"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MatchResult is what the engine reports for one scored pair.
type MatchResult struct {
	PropertyID  string    `json:"propertyId"`
	WantedAdID  string    `json:"wantedAdId"`
	OwnerID     string    `json:"ownerId"`
	OwnerUserID string    `json:"ownerUserId"`
	Score       int       `json:"score"`
	MatchType   MatchType `json:"matchType"`
	MatchedOn   []string  `json:"matchedOn"`
}

type MatchCounts struct {
	Direct   int `json:"direct"`
	Criteria int `json:"criteria"`
}

type Notification struct {
	UserID  string         `json:"userId"`
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Payload map[string]any `json:"payload"`
}
