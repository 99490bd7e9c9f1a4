package domain

import "time"

type Property struct {
	ID             string
	OwnerID        string
	OwnerUserID    string
	Address        string
	Suburb         *string
	City           *string
	Region         *string
	PropertyType   string
	Bedrooms       *int
	Bathrooms      *int
	EstimatedValue *int64  // native money units
	Features       *string // JSON array as stored
	IsActive       bool
	CreatedAt      time.Time
}
