package strategy

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"

	"github.com/magi-quant/backtester/src/ledger"
	"github.com/magi-quant/backtester/src/models"
)

// MeanReversion buys when the close pulls back from its rolling high by more
// than TriggerDistance standard deviations while holding above the short
// moving average, and brackets the entry with an absolute-priced sell stop
// and sell limit derived from the same standard deviation.
type MeanReversion struct {
	cfg Config
	// rolling close history per symbol, most recent last
	closes map[string][]float64
}

func NewMeanReversion(cfg Config) *MeanReversion {
	return &MeanReversion{
		cfg:    cfg,
		closes: make(map[string][]float64),
	}
}

func (s *MeanReversion) Name() string {
	return "mean_reversion"
}

func (s *MeanReversion) maxPeriod() int {
	period := s.cfg.SdPeriod
	for _, p := range []int{s.cfg.LookBackPeriod, s.cfg.MaShortPeriod, s.cfg.MaLongPeriod} {
		if p > period {
			period = p
		}
	}
	return period
}

// observe appends the close to the symbol's rolling window and reports
// whether enough history has accumulated to trade.
func (s *MeanReversion) observe(tick models.MarketTick) bool {
	window := append(s.closes[tick.Symbol], tick.Close)
	if max := s.maxPeriod(); len(window) > max {
		window = window[len(window)-max:]
	}
	s.closes[tick.Symbol] = window

	return len(window) >= s.maxPeriod()
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// OrderSize estimates the entry quantity from the current price and the
// notional cap.
// TODO: size off free cash instead of a fixed notional cap.
func (s *MeanReversion) OrderSize(price float64) float64 {
	return math.Floor(s.cfg.OrderLimit / price)
}

func (s *MeanReversion) RunOnMarketTicks(l *ledger.Ledger, ticksBySymbol map[string]models.MarketTick) {
	symbols := make([]string, 0, len(ticksBySymbol))
	for symbol := range ticksBySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		s.runOnMarketTick(l, ticksBySymbol[symbol])
	}
}

func (s *MeanReversion) runOnMarketTick(l *ledger.Ledger, tick models.MarketTick) {
	if !s.observe(tick) {
		return
	}

	window := s.closes[tick.Symbol]

	sd, err := stats.StandardDeviationSample(tail(window, s.cfg.SdPeriod))
	if err != nil {
		log.Errorf("MeanReversion: runOnMarketTick: failed to calculate standard deviation: %v", err)
		return
	}
	highest, err := stats.Max(tail(window, s.cfg.LookBackPeriod))
	if err != nil {
		log.Errorf("MeanReversion: runOnMarketTick: failed to calculate rolling high: %v", err)
		return
	}
	maShort, err := stats.Mean(tail(window, s.cfg.MaShortPeriod))
	if err != nil {
		log.Errorf("MeanReversion: runOnMarketTick: failed to calculate short moving average: %v", err)
		return
	}

	currPrice := tick.Close
	if currPrice >= highest-sd*s.cfg.TriggerDistance || currPrice < maShort {
		return
	}

	quantity := s.OrderSize(currPrice)
	if quantity <= 0 {
		log.Infof("MeanReversion: runOnMarketTick: TRIGGER BUY, but cannot trade due to quantity=0, tick=%s", tick)
		return
	}

	// Without knowledge of the next tick, orders are placed off the current
	// one and execute against tomorrow's bar.
	marketOrder := models.NewOrder(tick.Symbol, models.Buy, models.Market, math.NaN(), quantity, tick.DtIdx)
	l.PlaceOrder(marketOrder)
	log.Infof("MeanReversion: runOnMarketTick: TRIGGER BUY: placed marketOrder=%s", marketOrder)

	stopOrder := models.NewOrder(tick.Symbol, models.Sell, models.Stop, currPrice-sd*s.cfg.StopOrderDistance, quantity, tick.DtIdx)
	limitOrder := models.NewOrder(tick.Symbol, models.Sell, models.Limit, currPrice+sd*s.cfg.LimitOrderDistance, quantity, tick.DtIdx)
	l.LinkOrders(stopOrder, limitOrder)
	l.PlaceOrder(stopOrder)
	log.Infof("MeanReversion: runOnMarketTick: placed stopOrder=%s", stopOrder)
	l.PlaceOrder(limitOrder)
	log.Infof("MeanReversion: runOnMarketTick: placed limitOrder=%s", limitOrder)
}
