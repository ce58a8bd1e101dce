package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlySeries(start time.Time, values ...float64) []Point {
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{Month: start.AddDate(0, i, 0), Value: v}
	}
	return points
}

func TestLinearFitProjectsSlope(t *testing.T) {
	start := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	f := New()
	require.NoError(t, f.Fit(monthlySeries(start, 100, 110, 120, 130), MethodLinear, Params{}))

	predictions, err := f.Predict(2)
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	assert.InDelta(t, 140, predictions[0].Forecast, 0.001)
	assert.InDelta(t, 150, predictions[1].Forecast, 0.001)
	assert.Greater(t, predictions[1].Forecast, predictions[0].Forecast)
	for _, p := range predictions {
		assert.Less(t, p.Lower, p.Forecast)
		assert.Greater(t, p.Upper, p.Forecast)
	}
}

func TestPredictionsAreMonthlySpaced(t *testing.T) {
	start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	f := New()
	require.NoError(t, f.Fit(monthlySeries(start, 10, 20, 30), MethodLinear, Params{}))

	predictions, err := f.Predict(3)
	require.NoError(t, err)
	require.Len(t, predictions, 3)

	// Series ends in DEC 2025, so projections cover JAN-MAR 2026.
	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), predictions[0].Month)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), predictions[1].Month)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), predictions[2].Month)
}

func TestSMAHoldsFlat(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	f := New()
	require.NoError(t, f.Fit(monthlySeries(start, 100, 200, 300, 400, 500), MethodSMA, Params{Window: 3}))

	predictions, err := f.Predict(3)
	require.NoError(t, err)
	require.Len(t, predictions, 3)

	// Mean of the last 3 points, held flat.
	for _, p := range predictions {
		assert.InDelta(t, 400, p.Forecast, 0.001)
		assert.Less(t, p.Lower, p.Forecast)
	}
}

func TestEMASmoothing(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	f := New()
	require.NoError(t, f.Fit(monthlySeries(start, 100, 200, 300), MethodEMA, Params{Alpha: 0.5}))

	predictions, err := f.Predict(2)
	require.NoError(t, err)
	require.Len(t, predictions, 2)

	// 0.5-smoothed: 100 -> 150 -> 225, held flat.
	assert.InDelta(t, 225, predictions[0].Forecast, 0.001)
	assert.InDelta(t, 225, predictions[1].Forecast, 0.001)
}

func TestSeasonalFallsBackToLinearOnShortSeries(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	f := New()
	require.NoError(t, f.Fit(monthlySeries(start, 100, 110, 120), MethodSeasonal, Params{}))

	assert.True(t, f.UsedFallback())
	assert.Equal(t, MethodLinear, f.Method())

	predictions, err := f.Predict(1)
	require.NoError(t, err)
	assert.InDelta(t, 130, predictions[0].Forecast, 0.001)
}

func TestSeasonalCapturesPattern(t *testing.T) {
	// Two full years of a flat trend with a repeating 12-month pattern.
	pattern := []float64{100, 120, 140, 160, 180, 200, 200, 180, 160, 140, 120, 100}
	values := append(append([]float64{}, pattern...), pattern...)

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	f := New()
	require.NoError(t, f.Fit(monthlySeries(start, values...), MethodSeasonal, Params{}))
	assert.False(t, f.UsedFallback())

	predictions, err := f.Predict(12)
	require.NoError(t, err)
	require.Len(t, predictions, 12)

	// January is a trough and June a peak in the source pattern.
	assert.Less(t, predictions[0].Forecast, predictions[5].Forecast)
}

func TestHybridAddsSeasonalToLinearTrend(t *testing.T) {
	// Rising trend of 10 per month plus an alternating component.
	values := make([]float64, 24)
	for i := range values {
		values[i] = 1000 + 10*float64(i)
		if i%2 == 0 {
			values[i] += 50
		} else {
			values[i] -= 50
		}
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	f := New()
	require.NoError(t, f.Fit(monthlySeries(start, values...), MethodHybrid, Params{}))
	assert.False(t, f.UsedFallback())

	predictions, err := f.Predict(4)
	require.NoError(t, err)
	require.Len(t, predictions, 4)

	// The projected trend keeps rising over a full cycle.
	assert.Greater(t, predictions[2].Forecast, predictions[0].Forecast)
}

func TestFitUnknownMethod(t *testing.T) {
	f := New()
	err := f.Fit(monthlySeries(time.Now(), 1, 2, 3), "cubic", Params{})
	assert.Error(t, err)
}

func TestPredictBeforeFit(t *testing.T) {
	f := New()
	_, err := f.Predict(3)
	assert.Error(t, err)
}

func TestRefitReplacesState(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	f := New()
	require.NoError(t, f.Fit(monthlySeries(start, 100, 110, 120), MethodLinear, Params{}))
	require.NoError(t, f.Fit(monthlySeries(start, 500, 500, 500), MethodSMA, Params{}))

	predictions, err := f.Predict(1)
	require.NoError(t, err)
	assert.InDelta(t, 500, predictions[0].Forecast, 0.001)
}
