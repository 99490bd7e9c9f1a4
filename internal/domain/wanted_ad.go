package domain

type LocationType string

const (
	LocationSuburb LocationType = "SUBURB"
	LocationCity   LocationType = "CITY"
	LocationRegion LocationType = "REGION"
)

type WantedAd struct {
	ID            string
	BuyerID       string
	BuyerUserID   string
	BuyerName     *string
	Budget        int64
	PropertyTypes *string // JSON array as stored
	BedroomsMin   *int
	BedroomsMax   *int
	Features      *string // JSON array as stored
	IsActive      bool

	// Loaded alongside the ad; TargetAddresses keep their stored order.
	TargetAddresses []TargetAddress
	TargetLocations []TargetLocation
}

type TargetAddress struct {
	Address string
	Suburb  *string
	City    *string
}

type TargetLocation struct {
	LocationType LocationType
	Name         string
}
