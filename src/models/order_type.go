package models

import "fmt"

type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
	Stop   OrderType = "stop"
)

func (t OrderType) Validate() error {
	switch t {
	case Market, Limit, Stop:
		return nil
	default:
		return fmt.Errorf("invalid order type: %s", t)
	}
}
