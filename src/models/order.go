package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Order is a trading intent with a fill/cancel lifecycle. Orders are created
// by a strategy and handed to the Ledger; after placement only the Ledger's
// execution logic mutates them. Once fully filled or cancelled an order is
// immutable.
type Order struct {
	ID        uuid.UUID      `json:"id"`
	Symbol    string         `json:"symbol"`
	Direction OrderDirection `json:"direction"`
	Type      OrderType      `json:"type"`
	// Price is the price submitted when placing the order. NaN for market
	// orders.
	Price float64 `json:"price"`
	// PctFromMarket derives the limit / stop price from the linked market
	// order's execution price once that order fills.
	PctFromMarket *float64 `json:"pct_from_market,omitempty"`
	// FillPrice is the weighted average price filling the order.
	FillPrice           float64    `json:"fill_price"`
	QuantityOutstanding float64    `json:"quantity_outstanding"`
	QuantityFilled      float64    `json:"quantity_filled"`
	State               OrderState `json:"state"`
	Commission          float64    `json:"commission"`
	LinkID              *uuid.UUID `json:"link_id,omitempty"`
	// OpenDtIdx is when the order was created; CloseDtIdx is when it was
	// fully filled or cancelled.
	OpenDtIdx  time.Time  `json:"open_dt_idx"`
	CloseDtIdx *time.Time `json:"close_dt_idx,omitempty"`
	// Executable period, inclusive. Nil means no bound.
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
}

func NewOrder(symbol string, direction OrderDirection, orderType OrderType, price float64, quantity float64, openDtIdx time.Time) *Order {
	return &Order{
		ID:                  uuid.New(),
		Symbol:              symbol,
		Direction:           direction,
		Type:                orderType,
		Price:               price,
		QuantityOutstanding: quantity,
		State:               OrderStateNew,
		OpenDtIdx:           openDtIdx,
	}
}

func (o *Order) String() string {
	return fmt.Sprintf("Order<id=%s, symbol=%s, direction=%s, type=%s, price=%.4f, fill_price=%.4f, quantity_outstanding=%.0f, quantity_filled=%.0f, state=%s, commission=%.4f, open_dt_idx=%s>",
		o.ID, o.Symbol, o.Direction, o.Type, o.Price, o.FillPrice, o.QuantityOutstanding, o.QuantityFilled, o.State, o.Commission, o.OpenDtIdx.Format("2006-01-02"))
}

// Quantity is the original order quantity, invariant across fills.
func (o *Order) Quantity() float64 {
	return o.QuantityOutstanding + o.QuantityFilled
}

// IsExecutable reports whether dtIdx falls inside the order's validity
// window.
func (o *Order) IsExecutable(dtIdx time.Time) bool {
	if o.ValidFrom != nil && dtIdx.Before(*o.ValidFrom) {
		return false
	}
	if o.ValidTo != nil && dtIdx.After(*o.ValidTo) {
		return false
	}
	return true
}

// Fill executes quantity against the order at fillPrice. A quantity outside
// (0, QuantityOutstanding] indicates an engine bug and panics. Commission is
// incurred once, when the order becomes fully filled.
func (o *Order) Fill(fillPrice, quantity float64, dtIdx time.Time, commissions CommissionSchedule) {
	if quantity <= 0 || quantity > o.QuantityOutstanding {
		panic(fmt.Sprintf("Order.Fill: order_id=%s invalid quantity=%f, outstanding=%f", o.ID, quantity, o.QuantityOutstanding))
	}

	o.FillPrice = (o.FillPrice*o.QuantityFilled + fillPrice*quantity) / (o.QuantityFilled + quantity)
	o.QuantityFilled += quantity
	o.QuantityOutstanding -= quantity

	if o.QuantityOutstanding > 0 {
		o.State = OrderStatePartiallyFilled
	} else {
		o.State = OrderStateFullyFilled
		closeDtIdx := dtIdx
		o.CloseDtIdx = &closeDtIdx
		o.Commission = commissions.Charge(o.FillPrice, o.QuantityFilled)
	}

	log.Debugf("Order: Fill: order=%s fill_price=%f, quantity=%f, dt_idx=%s", o, fillPrice, quantity, dtIdx.Format("2006-01-02"))
}

// Cancel marks the order cancelled. Cancelling an order that is already
// fully filled or cancelled is a no-op; terminal orders never change state.
func (o *Order) Cancel(dtIdx time.Time) {
	if o.State.IsTerminal() {
		log.Warnf("Order: Cancel: order_id=%s already in terminal state %s, ignoring", o.ID, o.State)
		return
	}

	o.State = OrderStateCancelled
	closeDtIdx := dtIdx
	o.CloseDtIdx = &closeDtIdx

	log.Debugf("Order: Cancel: order=%s dt_idx=%s", o, dtIdx.Format("2006-01-02"))
}
