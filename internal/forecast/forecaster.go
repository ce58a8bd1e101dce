// Package forecast fits trend models to a monthly spend series and
// projects future months with a 95% confidence band.
package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Available fitting methods.
const (
	MethodLinear   = "linear"
	MethodSMA      = "sma"
	MethodEMA      = "ema"
	MethodSeasonal = "seasonal"
	MethodHybrid   = "hybrid"
)

const (
	// zScore95 is the normal quantile for a two-sided 95% interval.
	zScore95 = 1.96

	// minBand keeps the confidence bounds strictly apart from the point
	// forecast even when residuals vanish on a perfectly linear series.
	minBand = 1e-6

	defaultWindow = 3
	defaultAlpha  = 0.3
)

// Point is one observed month of the historical series.
type Point struct {
	Month time.Time `json:"month"`
	Value float64   `json:"value"`
}

// Prediction is one projected month with its confidence bounds.
type Prediction struct {
	Month    time.Time `json:"month"`
	Forecast float64   `json:"forecast"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}

// Params tunes the moving-average methods. Zero values select defaults.
type Params struct {
	Window int
	Alpha  float64
}

// Forecaster is a one-shot fit-then-predict model. Fitting again replaces
// any prior state. It enforces no minimum series length; callers refusing
// short series is part of their contract, not this one.
type Forecaster struct {
	method string
	series []Point
	fitted bool

	// model coefficients over index 0..n-1
	intercept float64
	slope     float64
	flat      float64
	band      float64
	seasonal  []float64
	period    int

	usedFallback bool
}

func New() *Forecaster {
	return &Forecaster{}
}

// UsedFallback reports whether the last fit silently fell back to the
// linear method after a failed seasonal decomposition.
func (f *Forecaster) UsedFallback() bool { return f.usedFallback }

// Method reports the method of the last fit.
func (f *Forecaster) Method() string { return f.method }

func (f *Forecaster) Fit(series []Point, method string, params Params) error {
	if params.Window <= 0 {
		params.Window = defaultWindow
	}
	if params.Alpha <= 0 || params.Alpha > 1 {
		params.Alpha = defaultAlpha
	}

	*f = Forecaster{method: method, series: series}
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Value
	}

	switch method {
	case MethodLinear:
		f.fitLinear(values)
	case MethodSMA:
		f.fitSMA(values, params.Window)
	case MethodEMA:
		f.fitEMA(values, params.Alpha)
	case MethodSeasonal:
		if err := f.fitSeasonal(values, false); err != nil {
			f.fitLinear(values)
			f.usedFallback = true
		}
	case MethodHybrid:
		if err := f.fitSeasonal(values, true); err != nil {
			f.fitLinear(values)
			f.usedFallback = true
		}
	default:
		return fmt.Errorf("método de forecast desconhecido: %q", method)
	}

	f.fitted = true
	return nil
}

// Predict projects the next periods months, monthly spaced starting the
// month after the last historical point.
func (f *Forecaster) Predict(periods int) ([]Prediction, error) {
	if !f.fitted {
		return nil, fmt.Errorf("forecaster não ajustado: chame Fit antes de Predict")
	}
	if periods <= 0 || len(f.series) == 0 {
		return nil, nil
	}

	n := len(f.series)
	last := f.series[n-1].Month
	predictions := make([]Prediction, 0, periods)
	for i := 0; i < periods; i++ {
		idx := n + i
		var value float64
		switch f.method {
		case MethodSMA, MethodEMA:
			value = f.flat
		default:
			value = f.intercept + f.slope*float64(idx)
			if len(f.seasonal) > 0 {
				value += f.seasonal[idx%f.period]
			}
		}
		month := last.AddDate(0, i+1, 0)
		predictions = append(predictions, Prediction{
			Month:    month,
			Forecast: value,
			Lower:    value - f.band,
			Upper:    value + f.band,
		})
	}
	return predictions, nil
}

func (f *Forecaster) fitLinear(values []float64) {
	f.intercept, f.slope = regress(values)

	residuals := make([]float64, len(values))
	for i, v := range values {
		residuals[i] = v - (f.intercept + f.slope*float64(i))
	}
	f.band = confidenceBand(residuals)
	f.seasonal = nil
	f.method = MethodLinear
}

func (f *Forecaster) fitSMA(values []float64, window int) {
	if window > len(values) {
		window = len(values)
	}
	if window > 0 {
		f.flat = stat.Mean(values[len(values)-window:], nil)
	}
	f.band = confidenceBand(values)
}

func (f *Forecaster) fitEMA(values []float64, alpha float64) {
	if len(values) == 0 {
		return
	}
	smoothed := values[0]
	for _, v := range values[1:] {
		smoothed = alpha*v + (1-alpha)*smoothed
	}
	f.flat = smoothed
	f.band = confidenceBand(values)
}

// fitSeasonal runs an additive decomposition with period min(12, n/2).
// The trend is extrapolated linearly and the seasonal pattern tiled
// forward. With trendFromSeries the trend line is fitted on the raw
// series instead of the smoothed trend, which is the hybrid variant.
func (f *Forecaster) fitSeasonal(values []float64, trendFromSeries bool) error {
	n := len(values)
	period := 12
	if n/2 < period {
		period = n / 2
	}
	if period < 2 {
		return fmt.Errorf("série de %d pontos é curta demais para decompor", n)
	}

	trend := centeredMovingAverage(values, period)

	// Seasonal indexes: mean detrended value per position in the cycle.
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, t := range trend {
		if math.IsNaN(t) {
			continue
		}
		sums[i%period] += values[i] - t
		counts[i%period]++
	}
	seasonal := make([]float64, period)
	var mean float64
	for k := range seasonal {
		if counts[k] == 0 {
			return fmt.Errorf("posição sazonal %d sem observações", k)
		}
		seasonal[k] = sums[k] / float64(counts[k])
		mean += seasonal[k]
	}
	mean /= float64(period)
	for k := range seasonal {
		seasonal[k] -= mean
	}

	if trendFromSeries {
		f.intercept, f.slope = regress(values)
	} else {
		f.intercept, f.slope = regressValid(trend)
	}
	f.seasonal = seasonal
	f.period = period

	residuals := make([]float64, 0, n)
	for i, v := range values {
		fitted := f.intercept + f.slope*float64(i) + seasonal[i%period]
		residuals = append(residuals, v-fitted)
	}
	f.band = confidenceBand(residuals)
	return nil
}

// centeredMovingAverage smooths the series with a window of the given
// period. Even periods use the classical half-weighted ends. Positions
// without a full window come back as NaN.
func centeredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	half := period / 2
	for i := half; i < n-half; i++ {
		var sum float64
		if period%2 == 0 {
			sum = 0.5*values[i-half] + 0.5*values[i+half]
			for j := i - half + 1; j < i+half; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		} else {
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
		}
	}
	return trend
}

// regress fits ordinary least squares over index 0..n-1.
func regress(values []float64) (intercept, slope float64) {
	if len(values) == 0 {
		return 0, 0
	}
	if len(values) == 1 {
		return values[0], 0
	}
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	return stat.LinearRegression(xs, values, nil, false)
}

// regressValid fits OLS over the non-NaN points, keeping their original
// index so the extrapolation stays anchored to the series timeline.
func regressValid(values []float64) (intercept, slope float64) {
	var xs, ys []float64
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	if len(ys) == 0 {
		return 0, 0
	}
	if len(ys) == 1 {
		return ys[0], 0
	}
	return stat.LinearRegression(xs, ys, nil, false)
}

func confidenceBand(values []float64) float64 {
	if len(values) < 2 {
		return minBand
	}
	band := zScore95 * stat.StdDev(values, nil)
	if math.IsNaN(band) || band < minBand {
		return minBand
	}
	return band
}
