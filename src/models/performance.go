package models

import (
	"fmt"
	"math"
	"time"
)

// Performance holds rolling order-outcome counters for a single symbol. A
// filled limit order is a success (take-profit exit), a filled stop order a
// failure (stop-loss exit). Trade life accumulates only over filled stop and
// limit orders.
type Performance struct {
	Symbol                  string        `json:"symbol"`
	OutstandingMarketOrders int           `json:"outstanding_market_orders"`
	OutstandingStopOrders   int           `json:"outstanding_stop_orders"`
	OutstandingLimitOrders  int           `json:"outstanding_limit_orders"`
	FilledMarketOrders      int           `json:"filled_market_orders"`
	FilledStopOrders        int           `json:"filled_stop_orders"`
	FilledLimitOrders       int           `json:"filled_limit_orders"`
	CancelledMarketOrders   int           `json:"cancelled_market_orders"`
	CancelledStopOrders     int           `json:"cancelled_stop_orders"`
	CancelledLimitOrders    int           `json:"cancelled_limit_orders"`
	Success                 int           `json:"success"`
	Failure                 int           `json:"failure"`
	MaxCapitalRequired      float64       `json:"max_capital_required"`
	RealizedPnl             float64       `json:"realized_pnl"`
	PositionQuantity        float64       `json:"position_quantity"`
	PositionCost            float64       `json:"position_cost"`
	PositionMtm             float64       `json:"position_mtm"`
	TotalTradeLife          time.Duration `json:"total_trade_life"`
}

func NewPerformance(symbol string) *Performance {
	return &Performance{Symbol: symbol}
}

// SuccessRate is the percentage of successes over closed trades. NaN when no
// trade has closed; consumers must handle the undefined case explicitly.
func (p *Performance) SuccessRate() float64 {
	if p.Success+p.Failure == 0 {
		return math.NaN()
	}
	return float64(p.Success*100) / float64(p.Success+p.Failure)
}

// AvgTradeLife returns the average trade life and whether any trade closed.
func (p *Performance) AvgTradeLife() (time.Duration, bool) {
	if p.Success+p.Failure == 0 {
		return 0, false
	}
	return p.TotalTradeLife / time.Duration(p.Success+p.Failure), true
}

func (p *Performance) String() string {
	return fmt.Sprintf("Performance<symbol=%s, outstanding_market_orders=%d, outstanding_stop_orders=%d, outstanding_limit_orders=%d, "+
		"filled_market_orders=%d, filled_stop_orders=%d, filled_limit_orders=%d, cancelled_market_orders=%d, "+
		"cancelled_stop_orders=%d, cancelled_limit_orders=%d, success=%d, failure=%d, success_rate=%.2f%%, "+
		"max_capital_required=%.2f, realized_pnl=%.4f, position_quantity=%.0f, position_cost=%.4f, position_mtm=%.4f, "+
		"total_trade_life=%s>",
		p.Symbol, p.OutstandingMarketOrders, p.OutstandingStopOrders, p.OutstandingLimitOrders,
		p.FilledMarketOrders, p.FilledStopOrders, p.FilledLimitOrders, p.CancelledMarketOrders,
		p.CancelledStopOrders, p.CancelledLimitOrders, p.Success, p.Failure, p.SuccessRate(),
		p.MaxCapitalRequired, p.RealizedPnl, p.PositionQuantity, p.PositionCost, p.PositionMtm,
		p.TotalTradeLife)
}
