package models

import (
	"fmt"
	"time"
)

// MarketTick is one daily bar for a single symbol. In reality different
// symbols tick at different times; the engine only assumes one bar per
// symbol per trading day.
type MarketTick struct {
	Symbol string    `json:"symbol"`
	Open   float64   `json:"open"`
	Close  float64   `json:"close"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Volume float64   `json:"volume"`
	DtIdx  time.Time `json:"dt_idx"`
}

func (t MarketTick) String() string {
	return fmt.Sprintf("MarketTick<symbol=%s, open=%.2f, close=%.2f, high=%.2f, low=%.2f, volume=%.0f, dt_idx=%s>",
		t.Symbol, t.Open, t.Close, t.High, t.Low, t.Volume, t.DtIdx.Format("2006-01-02"))
}

func NewMarketTick(symbol string, open, close, high, low, volume float64, dtIdx time.Time) MarketTick {
	return MarketTick{
		Symbol: symbol,
		Open:   open,
		Close:  close,
		High:   high,
		Low:    low,
		Volume: volume,
		DtIdx:  dtIdx,
	}
}
