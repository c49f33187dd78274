// Package strategy holds the trading strategies that emit orders to the
// ledger. A strategy observes the day's ticks and the ledger's realized
// state after the daily run; it only places and links new orders and reads
// ledger state through its query methods, never mutating it directly.
package strategy

import (
	"github.com/magi-quant/backtester/src/ledger"
	"github.com/magi-quant/backtester/src/models"
)

// Strategy is invoked once per trading day, after the ledger has executed
// the day's ticks.
type Strategy interface {
	Name() string
	RunOnMarketTicks(l *ledger.Ledger, ticksBySymbol map[string]models.MarketTick)
}
