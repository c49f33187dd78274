package models

import "fmt"

type OrderDirection string

const (
	Buy  OrderDirection = "buy"
	Sell OrderDirection = "sell"
)

func (d OrderDirection) Validate() error {
	switch d {
	case Buy, Sell:
		return nil
	default:
		return fmt.Errorf("invalid order direction: %s", d)
	}
}
