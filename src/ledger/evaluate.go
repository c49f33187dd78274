package ledger

import (
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/magi-quant/backtester/src/models"
	"github.com/magi-quant/backtester/src/perfeval"
)

// PortfolioPerformance summarizes portfolio-level outcomes and the
// annualized statistics over the recorded daily portfolio values. Success
// rate and Sharpe ratio are NaN when undefined.
type PortfolioPerformance struct {
	Portfolio            models.Portfolio
	MaxCapitalRequired   float64
	Success              int
	Failure              int
	SuccessRate          float64
	TotalTradeLife       time.Duration
	AvgTradeLife         time.Duration
	HasClosedTrades      bool
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	SharpeRatio          float64
}

// EvaluatePerformance recomputes the per-symbol performance records and the
// portfolio-level summary from the current order, position and portfolio
// state. Given unchanged state it is idempotent.
func (l *Ledger) EvaluatePerformance() (*PortfolioPerformance, []*models.Performance) {
	l.portfolioSuccess = 0
	l.portfolioFailure = 0
	l.portfolioTotalTradeLife = 0

	symbols := l.AllSymbols()
	performances := make([]*models.Performance, 0, len(symbols))

	for _, symbol := range symbols {
		performance := l.evaluateSymbol(symbol)
		performances = append(performances, performance)

		l.portfolioSuccess += performance.Success
		l.portfolioFailure += performance.Failure
		l.portfolioTotalTradeLife += performance.TotalTradeLife
	}

	l.portfolioMaxCapitalRequired = math.Max(l.portfolioMaxCapitalRequired, l.portfolio.PositionCost)

	summary := &PortfolioPerformance{
		Portfolio:          l.portfolio,
		MaxCapitalRequired: l.portfolioMaxCapitalRequired,
		Success:            l.portfolioSuccess,
		Failure:            l.portfolioFailure,
		SuccessRate:        math.NaN(),
		TotalTradeLife:     l.portfolioTotalTradeLife,
	}

	if closed := l.portfolioSuccess + l.portfolioFailure; closed > 0 {
		summary.SuccessRate = float64(l.portfolioSuccess*100) / float64(closed)
		summary.AvgTradeLife = l.portfolioTotalTradeLife / time.Duration(closed)
		summary.HasClosedTrades = true
	}

	dailyValues := make([]float64, 0, len(l.history))
	for _, portfolio := range l.history {
		dailyValues = append(dailyValues, portfolio.TotalValue())
	}

	summary.AnnualizedReturn = perfeval.AnnualizedReturn(dailyValues, l.tradingDays)
	summary.AnnualizedVolatility = perfeval.AnnualizedVolatility(dailyValues, l.tradingDays)
	summary.SharpeRatio = perfeval.SharpeRatio(dailyValues, l.tradingDays, l.riskFree)

	log.Infof("Ledger: EvaluatePerformance: portfolio realized_pnl=%.4f, cash_balance=%.4f, position_cost=%.4f, "+
		"position_mtm=%.4f, max_capital_required=%.2f, success=%d, failure=%d, success_rate=%.2f%%, "+
		"annual_return=%.6f, annual_vol=%.6f, sharpe_ratio=%.4f",
		summary.Portfolio.RealizedPnl, summary.Portfolio.CashBalance, summary.Portfolio.PositionCost,
		summary.Portfolio.PositionMtm, summary.MaxCapitalRequired, summary.Success, summary.Failure,
		summary.SuccessRate, summary.AnnualizedReturn, summary.AnnualizedVolatility, summary.SharpeRatio)

	return summary, performances
}

// evaluateSymbol classifies each of the symbol's orders into the nine
// (state, type) buckets and refreshes the symbol's performance record.
func (l *Ledger) evaluateSymbol(symbol string) *models.Performance {
	performance, found := l.performance[symbol]
	if !found {
		performance = models.NewPerformance(symbol)
		l.performance[symbol] = performance
	}

	var outstandingMarket, outstandingStop, outstandingLimit int
	var filledMarket, filledStop, filledLimit int
	var cancelledMarket, cancelledStop, cancelledLimit int
	var totalTradeLife time.Duration

	for _, order := range l.OrdersBySymbol(symbol) {
		switch {
		case order.State.IsOutstanding():
			switch order.Type {
			case models.Market:
				outstandingMarket++
			case models.Stop:
				outstandingStop++
			case models.Limit:
				outstandingLimit++
			}
		case order.State == models.OrderStateFullyFilled:
			switch order.Type {
			case models.Market:
				filledMarket++
			case models.Stop:
				filledStop++
				totalTradeLife += order.CloseDtIdx.Sub(order.OpenDtIdx)
			case models.Limit:
				filledLimit++
				totalTradeLife += order.CloseDtIdx.Sub(order.OpenDtIdx)
			}
		case order.State == models.OrderStateCancelled:
			switch order.Type {
			case models.Market:
				cancelledMarket++
			case models.Stop:
				cancelledStop++
			case models.Limit:
				cancelledLimit++
			}
		}
	}

	position := l.position(symbol)

	performance.OutstandingMarketOrders = outstandingMarket
	performance.OutstandingStopOrders = outstandingStop
	performance.OutstandingLimitOrders = outstandingLimit
	performance.FilledMarketOrders = filledMarket
	performance.FilledStopOrders = filledStop
	performance.FilledLimitOrders = filledLimit
	performance.CancelledMarketOrders = cancelledMarket
	performance.CancelledStopOrders = cancelledStop
	performance.CancelledLimitOrders = cancelledLimit
	performance.Success = filledLimit
	performance.Failure = filledStop
	performance.MaxCapitalRequired = math.Max(performance.MaxCapitalRequired, position.Cost)
	performance.RealizedPnl = position.RealizedPnl
	performance.PositionQuantity = position.Quantity
	performance.PositionCost = position.Cost
	performance.PositionMtm = position.Mtm
	performance.TotalTradeLife = totalTradeLife

	log.Debugf("Ledger: evaluateSymbol: %s", performance)

	return performance
}

// DescribeTradesExecuted logs, per close date, how many orders of each type
// were fully filled, and returns the counts keyed by close date.
func (l *Ledger) DescribeTradesExecuted() map[time.Time]map[models.OrderType]int {
	result := make(map[time.Time]map[models.OrderType]int)
	for _, order := range l.orders {
		if order.State != models.OrderStateFullyFilled {
			continue
		}

		dayCounts, found := result[*order.CloseDtIdx]
		if !found {
			dayCounts = make(map[models.OrderType]int)
			result[*order.CloseDtIdx] = dayCounts
		}
		dayCounts[order.Type]++
	}

	days := make([]time.Time, 0, len(result))
	for day := range result {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	log.Info("============================================================")
	log.Info("Trades Execution Summary for all dates")
	log.Info("------------------------------------------------------------")
	for _, day := range days {
		log.Infof("Ledger: DescribeTradesExecuted: %s: %v", day.Format("2006-01-02"), result[day])
	}
	log.Info("============================================================")

	return result
}
