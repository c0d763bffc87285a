package pricing

import (
	"gonum.org/v1/gonum/stat"

	"github.com/hotelrevenue/backend/internal/domain"
)

// Thresholds separating ordinary history from an actionable signal.
const (
	// lowSensitivityCorr: a price/occupancy correlation weaker than this
	// (i.e. closer to zero or positive) means demand barely reacts to price.
	lowSensitivityCorr = -0.3
	// highVolatilityCV: coefficient of variation of price above this marks an
	// erratic pricing strategy.
	highVolatilityCV = 0.15
)

// PricingInsights summarizes historical pricing performance: averages,
// volatility, per-weekday aggregates, price/occupancy correlation and the
// opportunities those numbers suggest.
func (e *Engine) PricingInsights(history []domain.Observation) (domain.InsightsSummary, error) {
	if len(history) == 0 {
		return domain.InsightsSummary{}, domain.NewDataError("no historical observations to analyze")
	}

	prices := make([]float64, len(history))
	occupancies := make([]float64, len(history))
	revpars := make([]float64, len(history))
	for i, o := range history {
		prices[i] = o.Price
		occupancies[i] = o.OccupancyRate
		revpars[i] = o.RevPAR()
	}

	avgPrice := stat.Mean(prices, nil)
	summary := domain.InsightsSummary{
		AvgPrice:            avgPrice,
		AvgOccupancy:        stat.Mean(occupancies, nil),
		AvgRevPAR:           stat.Mean(revpars, nil),
		OccupancyVolatility: sampleStd(occupancies),
		DailyPerformance:    dailyPerformance(history),
		ObservationCount:    len(history),
	}
	if avgPrice > 0 {
		summary.PriceVolatility = sampleStd(prices) / avgPrice
	}
	// A single observation carries no correlation signal, so neither the
	// correlation field nor the sensitivity opportunity is meaningful.
	if len(history) > 1 {
		summary.PriceOccupancyCorr = stat.Correlation(prices, occupancies, nil)
		if summary.PriceOccupancyCorr > lowSensitivityCorr {
			summary.Opportunities = append(summary.Opportunities,
				"Demand shows low price sensitivity: room to raise prices")
		}
	}
	if summary.PriceVolatility > highVolatilityCV {
		summary.Opportunities = append(summary.Opportunities,
			"High price volatility: standardize the pricing strategy")
	}
	return summary, nil
}

// dailyPerformance aggregates price, occupancy and RevPAR by weekday name.
func dailyPerformance(history []domain.Observation) map[string]domain.DayPerformance {
	type acc struct {
		price, occupancy, revpar float64
		count                    float64
	}
	byDay := make(map[string]*acc, 7)
	for _, o := range history {
		day := o.Date.Weekday().String()
		a, ok := byDay[day]
		if !ok {
			a = &acc{}
			byDay[day] = a
		}
		a.price += o.Price
		a.occupancy += o.OccupancyRate
		a.revpar += o.RevPAR()
		a.count++
	}

	out := make(map[string]domain.DayPerformance, len(byDay))
	for day, a := range byDay {
		out[day] = domain.DayPerformance{
			AvgPrice:     a.price / a.count,
			AvgOccupancy: a.occupancy / a.count,
			AvgRevPAR:    a.revpar / a.count,
		}
	}
	return out
}

func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
