package models

type OrderState string

const (
	OrderStateNew             OrderState = "new"
	OrderStatePartiallyFilled OrderState = "partially_filled"
	OrderStateFullyFilled     OrderState = "fully_filled"
	OrderStateCancelled       OrderState = "cancelled"
)

// IsTerminal reports whether no further transition is allowed.
func (s OrderState) IsTerminal() bool {
	return s == OrderStateFullyFilled || s == OrderStateCancelled
}

func (s OrderState) IsOutstanding() bool {
	return s == OrderStateNew || s == OrderStatePartiallyFilled
}
