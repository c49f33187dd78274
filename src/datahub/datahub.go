// Package datahub loads daily bars from CSV files and produces the ordered,
// deduplicated per-symbol tick sequences the engine consumes. Acquisition
// from a live market-data provider is an external concern; a directory of
// per-symbol CSV files is the abstract collaborator.
package datahub

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/magi-quant/backtester/src/models"
)

type DataHub struct{}

func New() *DataHub {
	return &DataHub{}
}

// LoadDir reads every <SYMBOL>.csv file in dir and returns the cleansed bar
// series per symbol: rows with zero or NaN fields removed, duplicate dates
// dropped keeping the first, dates ascending.
func (h *DataHub) LoadDir(dir string) (map[string][]models.MarketTick, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", dir, err)
	}

	symbolData := make(map[string][]models.MarketTick)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		symbol := strings.ToUpper(strings.TrimSuffix(entry.Name(), ".csv"))
		ticks, err := h.loadFile(filepath.Join(dir, entry.Name()), symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to load bars for symbol %s: %w", symbol, err)
		}

		symbolData[symbol] = ticks
	}

	log.Infof("DataHub: LoadDir: loaded %d symbols from %s", len(symbolData), dir)

	return symbolData, nil
}

func (h *DataHub) loadFile(path string, symbol string) ([]models.MarketTick, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var dtos []*CsvBarDTO
	if err := gocsv.UnmarshalFile(f, &dtos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	ticks := make([]models.MarketTick, 0, len(dtos))
	for _, dto := range dtos {
		tick, err := dto.ToModel(symbol)
		if err != nil {
			return nil, fmt.Errorf("bad row in %s: %w", path, err)
		}
		ticks = append(ticks, tick)
	}

	return Cleanse(ticks), nil
}

// Cleanse drops bars with any zero or NaN field, removes duplicate dates
// keeping the first occurrence and sorts the remainder by date ascending.
func Cleanse(ticks []models.MarketTick) []models.MarketTick {
	sort.SliceStable(ticks, func(i, j int) bool { return ticks[i].DtIdx.Before(ticks[j].DtIdx) })

	seen := make(map[time.Time]struct{})
	cleansed := make([]models.MarketTick, 0, len(ticks))
	for _, tick := range ticks {
		if hasZeroOrNaN(tick) {
			log.Debugf("DataHub: Cleanse: dropping bar with zero/NaN field: %s", tick)
			continue
		}
		if _, duplicate := seen[tick.DtIdx]; duplicate {
			log.Debugf("DataHub: Cleanse: dropping duplicate date: %s", tick)
			continue
		}
		seen[tick.DtIdx] = struct{}{}
		cleansed = append(cleansed, tick)
	}

	return cleansed
}

func hasZeroOrNaN(tick models.MarketTick) bool {
	for _, v := range []float64{tick.Open, tick.Close, tick.High, tick.Low, tick.Volume} {
		if v == 0 || math.IsNaN(v) {
			return true
		}
	}
	return false
}

// TicksByDay regroups per-symbol series into per-day symbol maps, the shape
// RunOnMarketTicks consumes.
func TicksByDay(symbolData map[string][]models.MarketTick) map[time.Time]map[string]models.MarketTick {
	byDay := make(map[time.Time]map[string]models.MarketTick)
	for symbol, ticks := range symbolData {
		for _, tick := range ticks {
			day, found := byDay[tick.DtIdx]
			if !found {
				day = make(map[string]models.MarketTick)
				byDay[tick.DtIdx] = day
			}
			day[symbol] = tick
		}
	}
	return byDay
}

// TradingDays returns the union of dates across symbols, ascending.
func TradingDays(ticksByDay map[time.Time]map[string]models.MarketTick) []time.Time {
	days := make([]time.Time, 0, len(ticksByDay))
	for day := range ticksByDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
