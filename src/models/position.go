package models

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
)

// Position is the per-symbol holding. Quantity is signed: negative means
// short. Cost is commission-inclusive, so Cost/Quantity approximates the
// average entry price only while the quantity's sign is unchanged. A
// position is never destroyed; flat positions simply carry zero cost and
// mtm.
type Position struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	Cost        float64 `json:"cost"`
	RealizedPnl float64 `json:"realized_pnl"`
	Mtm         float64 `json:"mtm"`
}

func NewPosition(symbol string) *Position {
	return &Position{Symbol: symbol}
}

func (p *Position) String() string {
	return fmt.Sprintf("Position<symbol=%s, quantity=%.0f, cost=%.4f, mtm=%.4f, realized_pnl=%.4f>",
		p.Symbol, p.Quantity, p.Cost, p.Mtm, p.RealizedPnl)
}

// Change applies an execution to the position. It must only be triggered by
// order execution. quantityChanged is signed: positive for buys, negative
// for sells. A zero quantityChanged indicates a caller bug and panics.
//
// A fill that would flip the position through zero is split into a closing
// leg, which realizes P&L on the entire existing quantity and carries the
// commission, and an opening leg at the same price.
func (p *Position) Change(price, quantityChanged, commission float64) {
	if quantityChanged == 0 {
		panic(fmt.Sprintf("Position.Change: symbol=%s invalid quantity is 0", p.Symbol))
	}

	log.Debugf("Position: Change: BEFORE: position=%s price=%f, quantity=%f, commission=%f", p, price, quantityChanged, commission)

	if p.Quantity*quantityChanged >= 0 {
		// Increasing position, either short or long. Commission is included
		// in position cost.
		p.Quantity += quantityChanged
		p.Cost += price*quantityChanged + commission
	} else if math.Abs(quantityChanged) <= math.Abs(p.Quantity) {
		// Reducing position without crossing zero. Commission is included
		// in realized pnl.
		avgEntryPrice := p.Cost / p.Quantity
		p.RealizedPnl += (avgEntryPrice-price)*quantityChanged - commission
		p.Cost += avgEntryPrice * quantityChanged
		p.Quantity += quantityChanged
	} else {
		// Flipping through zero: close the existing quantity, then open the
		// remainder on the other side.
		closingLeg := -p.Quantity
		openingLeg := quantityChanged - closingLeg
		p.Change(price, closingLeg, commission)
		p.Change(price, openingLeg, 0)
	}

	log.Debugf("Position: Change: AFTER: position=%s price=%f, quantity=%f, commission=%f", p, price, quantityChanged, commission)
}

// UpdateMtm marks the position to market at the given price.
func (p *Position) UpdateMtm(price float64) {
	p.Mtm = p.Quantity * price
}
