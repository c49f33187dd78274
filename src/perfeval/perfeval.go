// Package perfeval computes annualized performance statistics from a
// chronological series of daily portfolio values.
package perfeval

import (
	"math"

	"github.com/montanaflynn/stats"
)

// DefaultTradingDays is the day basis, i.e. number of trading days in a
// year.
const DefaultTradingDays = 255

// TBillYields holds static 4 week T-Bill yields in percent, used as a risk
// free rate reference when evaluating a historical period.
// TODO: Source this programmatically.
var TBillYields = map[int]float64{
	2019: 2.08,
	2018: 1.81,
	2017: 0.83,
	2016: 0.25,
	2015: 0.03,
	2014: 0.03,
	2013: 0.05,
	2012: 0.07,
	2011: 0.04,
	2010: 0.11,
}

// DailyReturns computes daily simple returns, dropping the first day. A
// series with fewer than two values yields an empty slice.
func DailyReturns(dailyValues []float64) []float64 {
	if len(dailyValues) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(dailyValues)-1)
	for i := 1; i < len(dailyValues); i++ {
		returns = append(returns, (dailyValues[i]-dailyValues[i-1])/dailyValues[i-1])
	}

	return returns
}

// AnnualizedReturn is the mean daily return scaled by the day basis n. NaN
// for a series with fewer than two values.
func AnnualizedReturn(dailyValues []float64, n int) float64 {
	mean, err := stats.Mean(DailyReturns(dailyValues))
	if err != nil {
		return math.NaN()
	}

	return mean * float64(n)
}

// AnnualizedVolatility is the sample standard deviation of daily returns
// scaled by sqrt(n). NaN for a series with fewer than three values.
func AnnualizedVolatility(dailyValues []float64, n int) float64 {
	sd, err := stats.StandardDeviationSample(DailyReturns(dailyValues))
	if err != nil {
		return math.NaN()
	}

	return sd * math.Sqrt(float64(n))
}

// SharpeRatio is the annualized excess return over the annualized
// volatility. A constant or too-short series has zero volatility, which
// makes the ratio undefined: NaN is returned rather than an error so
// consumers must handle the degenerate case explicitly.
func SharpeRatio(dailyValues []float64, n int, riskFree float64) float64 {
	excess := AnnualizedReturn(dailyValues, n) - riskFree
	sigma := AnnualizedVolatility(dailyValues, n)

	if sigma == 0 || math.IsNaN(sigma) {
		return math.NaN()
	}

	return excess / sigma
}
