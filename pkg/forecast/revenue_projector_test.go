package forecast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProjectGrowthFromPriorWindow(t *testing.T) {
	projector := NewRevenueProjector()

	projection := projector.Project(&ProjectionInput{
		CountsLatest:     15,
		CountsPrior:      10,
		AverageTicket:    50,
		TimesInLists:     40,
		TimesRecommended: 20,
	})

	require.InDelta(t, 0.5, projection.GrowthRate, 1e-9)
	require.InDelta(t, 1.25, projection.TrendFactor, 1e-9)
	require.InDelta(t, 0.30, projection.ExposureLift, 1e-9)
	require.InDelta(t, 750.0, projection.CurrentRevenue, 1e-9)
	require.InDelta(t, 1218.75, projection.ProjectedRevenue, 1e-9)
	require.Equal(t, DirectionUp, projection.Direction)
}

func TestProjectFallsBackToOldestWindow(t *testing.T) {
	projector := NewRevenueProjector()

	projection := projector.Project(&ProjectionInput{
		CountsLatest:  8,
		CountsPrior:   0,
		CountsOldest:  10,
		AverageTicket: 25,
	})

	require.InDelta(t, -0.2, projection.GrowthRate, 1e-9)
	require.Equal(t, DirectionDown, projection.Direction)
	// trendFactor = 1 + (-0.2 * 0.5) = 0.9, no exposure lift
	require.InDelta(t, 8*25*0.9, projection.ProjectedRevenue, 1e-9)
}

func TestProjectDegenerateInputsYieldCurrentRevenue(t *testing.T) {
	projector := NewRevenueProjector()

	projection := projector.Project(&ProjectionInput{
		CountsLatest:  0,
		CountsPrior:   0,
		CountsOldest:  0,
		AverageTicket: 80,
	})

	require.Zero(t, projection.GrowthRate)
	require.Zero(t, projection.ExposureLift)
	require.Equal(t, projection.CurrentRevenue, projection.ProjectedRevenue)
	require.Equal(t, DirectionStable, projection.Direction)
}

func TestProjectExposureLiftIsClamped(t *testing.T) {
	projector := NewRevenueProjector()

	projection := projector.Project(&ProjectionInput{
		CountsLatest:     10,
		CountsPrior:      10,
		AverageTicket:    50,
		TimesInLists:     1000,
		TimesRecommended: 1000,
	})

	require.InDelta(t, 0.30, projection.ExposureLift, 1e-9)
	require.InDelta(t, 500*1.30, projection.ProjectedRevenue, 1e-9)
}

func TestClassifyThresholds(t *testing.T) {
	projector := NewRevenueProjector()

	tests := []struct {
		name   string
		growth float64
		want   string
	}{
		{"above threshold", 0.051, DirectionUp},
		{"at threshold", 0.05, DirectionStable},
		{"zero", 0, DirectionStable},
		{"at negative threshold", -0.05, DirectionStable},
		{"below negative threshold", -0.051, DirectionDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, projector.classify(tt.growth))
		})
	}
}
