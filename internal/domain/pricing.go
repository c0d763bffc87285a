package domain

import "fmt"

// StandardRoomType is the default pricing tier.
const StandardRoomType = "Standard"

// PricingRules holds the per-room-type pricing constraints and elasticity.
type PricingRules struct {
	BasePrice  float64 `json:"base_price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
	PriceStep  float64 `json:"price_step"`
	Elasticity float64 `json:"elasticity"`
}

// Validate enforces 0 < min ≤ base ≤ max, a positive step and negative
// elasticity. A positive floor keeps reference prices and percentage
// comparisons finite downstream.
func (r PricingRules) Validate() error {
	if r.MinPrice <= 0 {
		return NewConfigError("min price must be positive, got %.2f", r.MinPrice)
	}
	if r.MinPrice > r.MaxPrice {
		return NewConfigError("inverted price bounds: min %.2f > max %.2f", r.MinPrice, r.MaxPrice)
	}
	if r.BasePrice < r.MinPrice || r.BasePrice > r.MaxPrice {
		return NewConfigError("base price %.2f outside bounds [%.2f, %.2f]", r.BasePrice, r.MinPrice, r.MaxPrice)
	}
	if r.PriceStep <= 0 {
		return NewConfigError("price step must be positive, got %.2f", r.PriceStep)
	}
	if r.Elasticity >= 0 {
		return NewConfigError("elasticity must be negative, got %.2f", r.Elasticity)
	}
	return nil
}

// RuleSet maps room types to their pricing rules. Lookups fail closed: callers
// wanting a fallback tier must opt in via GetOrDefault.
type RuleSet map[string]PricingRules

// DefaultRuleSet returns the built-in pricing tiers.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		StandardRoomType: {BasePrice: 100, MinPrice: 80, MaxPrice: 200, PriceStep: 5, Elasticity: -1.2},
		"Deluxe":         {BasePrice: 150, MinPrice: 120, MaxPrice: 300, PriceStep: 5, Elasticity: -1.5},
		"Suite":          {BasePrice: 250, MinPrice: 200, MaxPrice: 500, PriceStep: 5, Elasticity: -1.8},
	}
}

// Get returns the rules for roomType or ErrUnknownRoomType.
func (s RuleSet) Get(roomType string) (PricingRules, error) {
	rules, ok := s[roomType]
	if !ok {
		return PricingRules{}, fmt.Errorf("%w: %q", ErrUnknownRoomType, roomType)
	}
	return rules, nil
}

// GetOrDefault returns the rules for roomType, substituting the Standard tier
// when the room type has no configured rules.
func (s RuleSet) GetOrDefault(roomType string) PricingRules {
	if rules, ok := s[roomType]; ok {
		return rules
	}
	return s[StandardRoomType]
}

// Validate checks every rule in the set.
func (s RuleSet) Validate() error {
	for roomType, rules := range s {
		if err := rules.Validate(); err != nil {
			return fmt.Errorf("rules for %q: %w", roomType, err)
		}
	}
	return nil
}

// OptimizationResult is the outcome of a single-price optimization.
type OptimizationResult struct {
	OptimalPrice       float64  `json:"optimal_price"`
	PredictedOccupancy float64  `json:"predicted_occupancy"`
	PredictedRevPAR    float64  `json:"predicted_revpar"`
	BaseDemand         float64  `json:"base_demand"`
	ReferencePrice     float64  `json:"reference_price"`
	VsReferencePct     float64  `json:"price_vs_reference_pct"`
	Recommendations    []string `json:"recommendations"`
}

// ScenarioPoint is one row of a price-grid scenario analysis.
type ScenarioPoint struct {
	Price          float64 `json:"price"`
	OccupancyRate  float64 `json:"occupancy_rate"`
	RevPAR         float64 `json:"revpar"`
	VsReferencePct float64 `json:"vs_reference_pct"`
}

// DayPerformance aggregates pricing performance for one weekday.
type DayPerformance struct {
	AvgPrice     float64 `json:"avg_price"`
	AvgOccupancy float64 `json:"avg_occupancy"`
	AvgRevPAR    float64 `json:"avg_revpar"`
}

// InsightsSummary describes historical pricing performance and the
// opportunities it suggests.
type InsightsSummary struct {
	AvgPrice            float64                   `json:"avg_price"`
	AvgOccupancy        float64                   `json:"avg_occupancy"`
	AvgRevPAR           float64                   `json:"avg_revpar"`
	PriceVolatility     float64                   `json:"price_volatility"`
	OccupancyVolatility float64                   `json:"occupancy_volatility"`
	DailyPerformance    map[string]DayPerformance `json:"daily_performance"`
	PriceOccupancyCorr  float64                   `json:"price_occupancy_correlation"`
	Opportunities       []string                  `json:"opportunities"`
	ObservationCount    int                       `json:"observation_count"`
}
