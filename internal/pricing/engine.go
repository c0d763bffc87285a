// Package pricing maps a predicted base demand and competitor context into an
// adjusted demand, a revenue estimate and a revenue-maximizing price. The
// demand curve is a constant-elasticity adjustment around a reference price.
package pricing

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/hotelrevenue/backend/internal/domain"
	"github.com/hotelrevenue/backend/pkg/utils"
)

const (
	// OccupancyFloor is the minimum feasible occupancy: a hotel is never
	// literally empty at any rational price.
	OccupancyFloor = 0.05
	// OccupancyCeiling is the practical maximum occupancy, never exactly full.
	OccupancyCeiling = 0.98

	// priceTolerance is the absolute convergence tolerance of the bounded search.
	priceTolerance = 1e-4
)

// Target selects what the optimizer maximizes.
type Target string

const (
	TargetRevPAR    Target = "revpar"
	TargetOccupancy Target = "occupancy"
)

// Engine prices rooms against a keyed rule set.
type Engine struct {
	rules domain.RuleSet
	log   *zap.Logger
}

// NewEngine validates every rule once and returns an Engine.
func NewEngine(rules domain.RuleSet, log *zap.Logger) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{rules: rules, log: log}, nil
}

// DemandAtPrice adjusts baseDemand by the constant-elasticity price effect
// relative to referencePrice, clipped to the feasible occupancy range.
// Elasticity must be negative. A non-positive reference price is a foreseeable
// numeric edge case and degenerates to the unadjusted base demand.
func DemandAtPrice(price, baseDemand, elasticity, referencePrice float64) (float64, error) {
	if elasticity >= 0 {
		return 0, domain.NewConfigError("elasticity must be negative, got %.2f", elasticity)
	}
	if referencePrice <= 0 {
		return utils.Clamp(baseDemand, OccupancyFloor, OccupancyCeiling), nil
	}
	adjusted := baseDemand * math.Pow(price/referencePrice, elasticity)
	return utils.Clamp(adjusted, OccupancyFloor, OccupancyCeiling), nil
}

// RevenueAtPrice is RevPAR at the given price: price × adjusted demand.
func RevenueAtPrice(price, baseDemand, elasticity, referencePrice float64) (float64, error) {
	demand, err := DemandAtPrice(price, baseDemand, elasticity, referencePrice)
	if err != nil {
		return 0, err
	}
	return price * demand, nil
}

// OptimizeRequest describes one price-optimization call. MinPrice/MaxPrice
// override the rule bounds when non-zero.
type OptimizeRequest struct {
	BaseDemand       float64
	RoomType         string
	CompetitorPrices []float64
	MinPrice         float64
	MaxPrice         float64
	Target           Target
}

// OptimalPrice maximizes RevPAR (or occupancy) over the room type's price
// bounds with a derivative-free golden-section search. The objective is
// smooth and unimodal under negative elasticity, so the bounded local search
// finds the global optimum on the interval.
func (e *Engine) OptimalPrice(req OptimizeRequest) (domain.OptimizationResult, error) {
	rules, err := e.rules.Get(req.RoomType)
	if err != nil {
		return domain.OptimizationResult{}, err
	}

	minPrice, maxPrice := rules.MinPrice, rules.MaxPrice
	if req.MinPrice > 0 {
		minPrice = req.MinPrice
	}
	if req.MaxPrice > 0 {
		maxPrice = req.MaxPrice
	}
	if minPrice > maxPrice {
		return domain.OptimizationResult{}, domain.NewConfigError(
			"inverted price bounds: min %.2f > max %.2f", minPrice, maxPrice)
	}

	reference := e.referencePrice(req.CompetitorPrices, rules)
	target := req.Target
	if target == "" {
		target = TargetRevPAR
	}
	if target != TargetRevPAR && target != TargetOccupancy {
		return domain.OptimizationResult{}, domain.NewConfigError("unknown optimization target %q", target)
	}

	objective := func(price float64) float64 {
		demand, _ := DemandAtPrice(price, req.BaseDemand, rules.Elasticity, reference)
		if target == TargetOccupancy {
			return demand
		}
		return price * demand
	}

	var optimal float64
	if maxPrice-minPrice < priceTolerance {
		// Bounds collapsed to a point: nothing to optimize.
		optimal = minPrice
	} else {
		optimal = goldenSectionMax(objective, minPrice, maxPrice, priceTolerance)
	}

	demand, err := DemandAtPrice(optimal, req.BaseDemand, rules.Elasticity, reference)
	if err != nil {
		return domain.OptimizationResult{}, err
	}

	result := domain.OptimizationResult{
		OptimalPrice:       utils.RoundTo(optimal, 2),
		PredictedOccupancy: utils.RoundTo(demand, 3),
		PredictedRevPAR:    utils.RoundTo(optimal*demand, 2),
		BaseDemand:         req.BaseDemand,
		ReferencePrice:     reference,
		VsReferencePct:     utils.RoundTo((optimal/reference-1)*100, 1),
		Recommendations:    recommendations(optimal, demand, reference, rules),
	}

	e.log.Debug("price optimized",
		zap.String("room_type", req.RoomType),
		zap.String("target", string(target)),
		zap.Float64("optimal_price", result.OptimalPrice),
		zap.Float64("predicted_revpar", result.PredictedRevPAR),
	)
	return result, nil
}

// ScenarioAnalysis evaluates demand and revenue over an evenly spaced price
// grid, the brute-force counterpart of OptimalPrice. The default grid runs
// from the rule minimum to maximum in steps of the configured price step.
func (e *Engine) ScenarioAnalysis(baseDemand float64, roomType string, competitorPrices, priceGrid []float64) ([]domain.ScenarioPoint, error) {
	rules, err := e.rules.Get(roomType)
	if err != nil {
		return nil, err
	}
	reference := e.referencePrice(competitorPrices, rules)

	if priceGrid == nil {
		for price := rules.MinPrice; price <= rules.MaxPrice+priceTolerance; price += rules.PriceStep {
			priceGrid = append(priceGrid, price)
		}
	}

	points := make([]domain.ScenarioPoint, 0, len(priceGrid))
	for _, price := range priceGrid {
		demand, err := DemandAtPrice(price, baseDemand, rules.Elasticity, reference)
		if err != nil {
			return nil, err
		}
		points = append(points, domain.ScenarioPoint{
			Price:          price,
			OccupancyRate:  demand,
			RevPAR:         price * demand,
			VsReferencePct: (price/reference - 1) * 100,
		})
	}
	return points, nil
}

// referencePrice is the mean of supplied competitor prices, or the configured
// base price when none are supplied or the mean is not positive.
func (e *Engine) referencePrice(competitorPrices []float64, rules domain.PricingRules) float64 {
	if len(competitorPrices) == 0 {
		return rules.BasePrice
	}
	mean := stat.Mean(competitorPrices, nil)
	if mean <= 0 {
		e.log.Warn("non-positive competitor price mean, falling back to base price",
			zap.Float64("mean", mean),
			zap.Float64("base_price", rules.BasePrice),
		)
		return rules.BasePrice
	}
	return mean
}

// recommendations emits the qualitative business flags for an optimized price.
// All applicable flags are emitted, in a fixed order.
func recommendations(price, demand, reference float64, rules domain.PricingRules) []string {
	var recs []string
	if price > reference*1.15 {
		recs = append(recs, "Price is significantly above the competition")
	} else if price < reference*0.85 {
		recs = append(recs, "Below market: opportunity to raise the price")
	}
	if demand > 0.90 {
		recs = append(recs, "High demand: consider raising the price")
	} else if demand < 0.60 {
		recs = append(recs, "Low demand: consider running a promotion")
	}
	if price <= rules.MinPrice*1.05 {
		recs = append(recs, "Price is near the configured floor: review the strategy")
	} else if price >= rules.MaxPrice*0.95 {
		recs = append(recs, "Premium pricing: make sure the added value is visible")
	}
	return recs
}

// goldenSectionMax maximizes a unimodal f over [a, b] to within tol.
func goldenSectionMax(f func(float64) float64, a, b, tol float64) float64 {
	invPhi := (math.Sqrt(5) - 1) / 2

	x1 := b - invPhi*(b-a)
	x2 := a + invPhi*(b-a)
	f1, f2 := f(x1), f(x2)
	for b-a > tol {
		if f1 >= f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - invPhi*(b-a)
			f1 = f(x1)
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + invPhi*(b-a)
			f2 = f(x2)
		}
	}
	return (a + b) / 2
}
