package strategy

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"

	"github.com/magi-quant/backtester/src/ledger"
	"github.com/magi-quant/backtester/src/models"
)

// Mispricing buys when the close trades more than TriggerDistance standard
// deviations below the long moving average. The bracket exits carry
// pct-from-market offsets instead of absolute prices: their limit / stop
// prices derive from the entry order's execution price once it fills.
type Mispricing struct {
	cfg    Config
	closes map[string][]float64
}

func NewMispricing(cfg Config) *Mispricing {
	return &Mispricing{
		cfg:    cfg,
		closes: make(map[string][]float64),
	}
}

func (s *Mispricing) Name() string {
	return "mispricing"
}

func (s *Mispricing) observe(tick models.MarketTick) bool {
	period := s.cfg.MaLongPeriod
	if s.cfg.SdPeriod > period {
		period = s.cfg.SdPeriod
	}

	window := append(s.closes[tick.Symbol], tick.Close)
	if len(window) > period {
		window = window[len(window)-period:]
	}
	s.closes[tick.Symbol] = window

	return len(window) >= period
}

func (s *Mispricing) OrderSize(price float64) float64 {
	return math.Floor(s.cfg.OrderLimit / price)
}

func (s *Mispricing) RunOnMarketTicks(l *ledger.Ledger, ticksBySymbol map[string]models.MarketTick) {
	symbols := make([]string, 0, len(ticksBySymbol))
	for symbol := range ticksBySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		s.runOnMarketTick(l, ticksBySymbol[symbol])
	}
}

func (s *Mispricing) runOnMarketTick(l *ledger.Ledger, tick models.MarketTick) {
	if !s.observe(tick) {
		return
	}

	window := s.closes[tick.Symbol]

	sd, err := stats.StandardDeviationSample(tail(window, s.cfg.SdPeriod))
	if err != nil {
		log.Errorf("Mispricing: runOnMarketTick: failed to calculate standard deviation: %v", err)
		return
	}
	maLong, err := stats.Mean(tail(window, s.cfg.MaLongPeriod))
	if err != nil {
		log.Errorf("Mispricing: runOnMarketTick: failed to calculate long moving average: %v", err)
		return
	}

	if tick.Close >= maLong-sd*s.cfg.TriggerDistance {
		return
	}

	quantity := s.OrderSize(tick.Close)
	if quantity <= 0 {
		log.Infof("Mispricing: runOnMarketTick: TRIGGER BUY, but cannot trade due to quantity=0, tick=%s", tick)
		return
	}

	marketOrder := models.NewOrder(tick.Symbol, models.Buy, models.Market, math.NaN(), quantity, tick.DtIdx)

	// Exit prices are unknown until the entry fills; NaN prices never
	// satisfy a fill condition, so the exits rest until derived.
	limitPct := s.cfg.LimitOrderPct
	limitOrder := models.NewOrder(tick.Symbol, models.Sell, models.Limit, math.NaN(), quantity, tick.DtIdx)
	limitOrder.PctFromMarket = &limitPct

	stopPct := s.cfg.StopOrderPct
	stopOrder := models.NewOrder(tick.Symbol, models.Sell, models.Stop, math.NaN(), quantity, tick.DtIdx)
	stopOrder.PctFromMarket = &stopPct

	l.LinkOrders(marketOrder, stopOrder, limitOrder)
	l.PlaceOrder(marketOrder)
	l.PlaceOrder(stopOrder)
	l.PlaceOrder(limitOrder)

	log.Infof("Mispricing: runOnMarketTick: TRIGGER BUY: placed marketOrder=%s with pct-from-market bracket", marketOrder)
}
