package matching

// Default scoring weights. Area matches start at WeightLocation and are
// kept only when the total reaches DefaultThreshold.
const (
	ScoreDirect         = 100
	WeightLocation      = 40
	WeightBudget        = 30
	WeightBudgetPartial = 15
	WeightPropertyType  = 10
	WeightBedrooms      = 10
	WeightFeatures      = 10

	DefaultBudgetTolerancePct = 20
	DefaultThreshold          = 40
)

// Criterion tags reported in matchedOn.
const (
	TagDirectAddress = "direct_address"
	TagLocation      = "location"
	TagBudget        = "budget"
	TagBudgetPartial = "budget_partial"
	TagPropertyType  = "propertyType"
	TagBedrooms      = "bedrooms"
	TagFeatures      = "features"
)

type Weights struct {
	Direct        int
	Location      int
	Budget        int
	BudgetPartial int
	PropertyType  int
	Bedrooms      int
	Features      int

	// Budget is a full hit within TolerancePct of the estimated value and a
	// partial hit within twice that.
	TolerancePct int
	Threshold    int
}

func DefaultWeights() Weights {
	return Weights{
		Direct:        ScoreDirect,
		Location:      WeightLocation,
		Budget:        WeightBudget,
		BudgetPartial: WeightBudgetPartial,
		PropertyType:  WeightPropertyType,
		Bedrooms:      WeightBedrooms,
		Features:      WeightFeatures,
		TolerancePct:  DefaultBudgetTolerancePct,
		Threshold:     DefaultThreshold,
	}
}
