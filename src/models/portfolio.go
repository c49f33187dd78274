package models

import "fmt"

// Portfolio aggregates positions into cash balance, position cost and
// mark-to-market. It is derived entirely from the set of positions on each
// Refresh and never mutated directly. Portfolio is a value type so the
// historical series can store independent copies.
type Portfolio struct {
	InitialCapital float64 `json:"initial_capital"`
	RealizedPnl    float64 `json:"realized_pnl"`
	CashBalance    float64 `json:"cash_balance"`
	PositionCost   float64 `json:"position_cost"`
	PositionMtm    float64 `json:"position_mtm"`
}

func NewPortfolio(capital float64) Portfolio {
	return Portfolio{
		InitialCapital: capital,
		CashBalance:    capital,
	}
}

func (p Portfolio) String() string {
	return fmt.Sprintf("Portfolio<initial_capital=%.2f, realized_pnl=%.4f, cash_balance=%.4f, position_cost=%.4f, position_mtm=%.4f>",
		p.InitialCapital, p.RealizedPnl, p.CashBalance, p.PositionCost, p.PositionMtm)
}

// TotalValue is the end-of-day portfolio value used for performance
// evaluation.
func (p Portfolio) TotalValue() float64 {
	return p.CashBalance + p.PositionMtm
}

func (p *Portfolio) reset() {
	p.RealizedPnl = 0
	p.CashBalance = p.InitialCapital
	p.PositionCost = 0
	p.PositionMtm = 0
}

// Refresh recomputes the portfolio from scratch off the given positions.
func (p *Portfolio) Refresh(positions []*Position) {
	p.reset()

	for _, position := range positions {
		p.RealizedPnl += position.RealizedPnl
		p.CashBalance += position.RealizedPnl - position.Cost
		p.PositionCost += position.Cost
		p.PositionMtm += position.Mtm
	}
}
