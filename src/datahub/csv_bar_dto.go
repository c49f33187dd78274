package datahub

import (
	"fmt"
	"time"

	"github.com/magi-quant/backtester/src/models"
)

// CsvBarDTO is one row of a per-symbol daily bar file.
type CsvBarDTO struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

func (dto *CsvBarDTO) ToModel(symbol string) (models.MarketTick, error) {
	dtIdx, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		return models.MarketTick{}, fmt.Errorf("failed to parse date %q: %w", dto.Date, err)
	}

	return models.NewMarketTick(symbol, dto.Open, dto.Close, dto.High, dto.Low, dto.Volume, dtIdx), nil
}
