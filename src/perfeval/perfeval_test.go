package perfeval

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyReturns(t *testing.T) {
	t.Run("first day dropped", func(t *testing.T) {
		returns := DailyReturns([]float64{100, 110, 99})
		require.Len(t, returns, 2)
		assert.InDelta(t, 0.1, returns[0], 1e-9)
		assert.InDelta(t, -0.1, returns[1], 1e-9)
	})

	t.Run("single value yields no returns", func(t *testing.T) {
		require.Empty(t, DailyReturns([]float64{100}))
		require.Empty(t, DailyReturns(nil))
	})
}

func TestAnnualizedReturn(t *testing.T) {
	t.Run("mean daily return times day basis", func(t *testing.T) {
		// constant +1% daily
		values := []float64{100, 101, 102.01, 103.0301}
		require.InDelta(t, 0.01*255, AnnualizedReturn(values, 255), 1e-6)
	})

	t.Run("NaN for short series", func(t *testing.T) {
		require.True(t, math.IsNaN(AnnualizedReturn([]float64{100}, 255)))
	})
}

func TestAnnualizedVolatility(t *testing.T) {
	t.Run("flat series has zero volatility", func(t *testing.T) {
		values := []float64{100, 100, 100, 100, 100}
		require.Zero(t, AnnualizedVolatility(values, 255))
	})

	t.Run("scales with sqrt of day basis", func(t *testing.T) {
		values := []float64{100, 110, 99, 105, 102}
		returns := DailyReturns(values)

		mean := 0.0
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))

		variance := 0.0
		for _, r := range returns {
			variance += (r - mean) * (r - mean)
		}
		sd := math.Sqrt(variance / float64(len(returns)-1))

		require.InDelta(t, sd*math.Sqrt(255), AnnualizedVolatility(values, 255), 1e-9)
	})
}

func TestSharpeRatio(t *testing.T) {
	t.Run("flat series is undefined, not an error", func(t *testing.T) {
		values := []float64{100, 100, 100, 100, 100}
		require.NotPanics(t, func() {
			require.True(t, math.IsNaN(SharpeRatio(values, 255, 0.0017625)))
		})
	})

	t.Run("single value is undefined", func(t *testing.T) {
		require.True(t, math.IsNaN(SharpeRatio([]float64{100}, 255, 0)))
	})

	t.Run("excess return over volatility", func(t *testing.T) {
		values := []float64{100, 110, 99, 105, 102}
		expected := (AnnualizedReturn(values, 255) - 0.01) / AnnualizedVolatility(values, 255)
		require.InDelta(t, expected, SharpeRatio(values, 255, 0.01), 1e-9)
	})
}
