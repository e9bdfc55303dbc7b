package forecast

// RevenueProjector extrapolates next-period revenue for one restaurant from
// trailing reservation windows and exposure counters. It holds no state and
// performs no I/O, so projections for different restaurants can run in
// parallel with no coordination.
type RevenueProjector struct {
	exposureDivisor float64
	maxLift         float64
	smoothing       float64
	trendThreshold  float64
}

type ProjectionInput struct {
	CountsLatest     int64   `json:"counts_latest"`
	CountsPrior      int64   `json:"counts_prior"`
	CountsOldest     int64   `json:"counts_oldest"`
	AverageTicket    float64 `json:"average_ticket"`
	TimesInLists     int64   `json:"times_in_lists"`
	TimesRecommended int64   `json:"times_recommended"`
}

type Projection struct {
	GrowthRate       float64 `json:"growth_rate"`
	TrendFactor      float64 `json:"trend_factor"`
	ExposureLift     float64 `json:"exposure_lift"`
	CurrentRevenue   float64 `json:"current_revenue"`
	ProjectedRevenue float64 `json:"projected_revenue"`
	Direction        string  `json:"direction"`
}

const (
	DirectionUp     = "up"
	DirectionDown   = "down"
	DirectionStable = "stable"
)

func NewRevenueProjector() *RevenueProjector {
	return &RevenueProjector{
		exposureDivisor: 200.0,
		maxLift:         0.30,
		smoothing:       0.5,
		trendThreshold:  0.05,
	}
}

// Project estimates next-period revenue. Growth is read from the most recent
// pair of windows with data, halved before application so a single noisy
// period cannot swing the projection, and exposure can never move the result
// by more than maxLift.
func (p *RevenueProjector) Project(input *ProjectionInput) *Projection {
	growth := p.growthRate(input)
	lift := p.exposureLift(input)

	current := float64(input.CountsLatest) * input.AverageTicket
	trendFactor := 1.0 + growth*p.smoothing
	projected := current * trendFactor * (1.0 + lift)

	return &Projection{
		GrowthRate:       growth,
		TrendFactor:      trendFactor,
		ExposureLift:     lift,
		CurrentRevenue:   current,
		ProjectedRevenue: projected,
		Direction:        p.classify(growth),
	}
}

func (p *RevenueProjector) growthRate(input *ProjectionInput) float64 {
	switch {
	case input.CountsPrior > 0:
		return float64(input.CountsLatest-input.CountsPrior) / float64(input.CountsPrior)
	case input.CountsOldest > 0:
		return float64(input.CountsLatest-input.CountsOldest) / float64(input.CountsOldest)
	default:
		return 0.0
	}
}

func (p *RevenueProjector) exposureLift(input *ProjectionInput) float64 {
	raw := float64(input.TimesInLists+input.TimesRecommended) / p.exposureDivisor
	if raw < 0 {
		return 0
	}
	if raw > p.maxLift {
		return p.maxLift
	}
	return raw
}

// classify keeps noise around zero from being reported as a trend.
func (p *RevenueProjector) classify(growth float64) string {
	switch {
	case growth > p.trendThreshold:
		return DirectionUp
	case growth < -p.trendThreshold:
		return DirectionDown
	default:
		return DirectionStable
	}
}
