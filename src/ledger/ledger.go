// Package ledger implements the order-matching and portfolio-accounting
// engine. A Ledger ingests daily market ticks, executes resting orders
// against them, maintains per-symbol positions and portfolio-level state,
// links bracket orders and computes performance statistics.
//
// The engine is single-threaded: a simulation run owns its Ledger and
// processes strictly sequentially by trading day, then by symbol, then by
// order type priority. Strategies never mutate ledger-owned state directly;
// PlaceOrder and LinkOrders are the sole external mutators.
package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/magi-quant/backtester/src/models"
	"github.com/magi-quant/backtester/src/perfeval"
)

type Ledger struct {
	orders      []*models.Order
	ordersByID  map[uuid.UUID]*models.Order
	positions   map[string]*models.Position
	portfolio   models.Portfolio
	history     []models.Portfolio
	performance map[string]*models.Performance

	commissions models.CommissionSchedule
	riskFree    float64
	tradingDays int

	portfolioMaxCapitalRequired float64
	portfolioSuccess            int
	portfolioFailure            int
	portfolioTotalTradeLife     time.Duration
}

func New(initialCapital, riskFree float64, commissions models.CommissionSchedule, tradingDaysPerYear int) *Ledger {
	if tradingDaysPerYear <= 0 {
		tradingDaysPerYear = perfeval.DefaultTradingDays
	}

	return &Ledger{
		ordersByID:  make(map[uuid.UUID]*models.Order),
		positions:   make(map[string]*models.Position),
		portfolio:   models.NewPortfolio(initialCapital),
		performance: make(map[string]*models.Performance),
		commissions: commissions,
		riskFree:    riskFree,
		tradingDays: tradingDaysPerYear,
	}
}

// PlaceOrder accepts an order for execution on future market ticks. The
// ledger takes ownership: the caller must not mutate the order afterwards.
func (l *Ledger) PlaceOrder(order *models.Order) {
	l.orders = append(l.orders, order)
	l.ordersByID[order.ID] = order
}

// LinkOrders assigns a freshly generated shared link id to a group of
// orders, typically one entry plus one or two exits. Once any linked stop or
// limit order fully fills, the remaining NEW siblings are cancelled.
func (l *Ledger) LinkOrders(orders ...*models.Order) uuid.UUID {
	linkID := uuid.New()
	for _, order := range orders {
		id := linkID
		order.LinkID = &id
	}

	log.Debugf("Ledger: LinkOrders: linked %d orders, link_id=%s", len(orders), linkID)

	return linkID
}

// OrderByID returns the order with the given id, or nil if unknown.
func (l *Ledger) OrderByID(orderID uuid.UUID) *models.Order {
	return l.ordersByID[orderID]
}

// OrdersByLinkID returns all orders sharing the given link id.
func (l *Ledger) OrdersByLinkID(linkID uuid.UUID) []*models.Order {
	var orders []*models.Order
	for _, order := range l.orders {
		if order.LinkID != nil && *order.LinkID == linkID {
			orders = append(orders, order)
		}
	}
	return orders
}

// OrdersBySymbol returns all orders for the given symbol in placement order.
func (l *Ledger) OrdersBySymbol(symbol string) []*models.Order {
	var orders []*models.Order
	for _, order := range l.orders {
		if order.Symbol == symbol {
			orders = append(orders, order)
		}
	}
	return orders
}

// PositionBySymbol returns the position for symbol, or nil if the symbol has
// never traded nor been marked to market.
func (l *Ledger) PositionBySymbol(symbol string) *models.Position {
	return l.positions[symbol]
}

// PerformanceBySymbol returns the performance record for symbol, or nil
// before the first EvaluatePerformance call covering it.
func (l *Ledger) PerformanceBySymbol(symbol string) *models.Performance {
	return l.performance[symbol]
}

// Portfolio returns a copy of the current portfolio state.
func (l *Ledger) Portfolio() models.Portfolio {
	return l.portfolio
}

// HistoricalPortfolios returns the end-of-day portfolio snapshots recorded
// so far, one per RunOnMarketTicks call.
func (l *Ledger) HistoricalPortfolios() []models.Portfolio {
	return l.history
}

// AllSymbols returns every symbol ever seen on an order or position, sorted.
func (l *Ledger) AllSymbols() []string {
	seen := make(map[string]struct{})
	for _, order := range l.orders {
		seen[order.Symbol] = struct{}{}
	}
	for symbol := range l.positions {
		seen[symbol] = struct{}{}
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	return symbols
}

func (l *Ledger) position(symbol string) *models.Position {
	position, found := l.positions[symbol]
	if !found {
		position = models.NewPosition(symbol)
		l.positions[symbol] = position
	}
	return position
}

func (l *Ledger) allPositions() []*models.Position {
	symbols := make([]string, 0, len(l.positions))
	for symbol := range l.positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	positions := make([]*models.Position, 0, len(symbols))
	for _, symbol := range symbols {
		positions = append(positions, l.positions[symbol])
	}

	return positions
}

// RunOnMarketTicks is the daily run, from trading open to close. It executes
// all outstanding orders against the day's ticks, updates position and
// portfolio mark-to-market off the close, refreshes the portfolio and
// records an end-of-day snapshot for performance evaluation.
//
// Symbols with outstanding orders but no tick today are skipped, which is a
// data gap rather than an error; they are logged distinctly from symbols
// that simply have no orders.
func (l *Ledger) RunOnMarketTicks(ticksBySymbol map[string]models.MarketTick) {
	symbols := make([]string, 0, len(ticksBySymbol))
	for symbol := range ticksBySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		tick := ticksBySymbol[symbol]
		// Execute existing orders from the previous trading period. In
		// reality this happens during the current trading period.
		l.executeOrdersOnMarketTick(tick)
		// Mark to market off the close. In reality this happens at the end
		// of the current trading period.
		l.updateMtmOnMarketTick(tick)

		l.portfolio.Refresh(l.allPositions())
	}

	l.logSkippedSymbols(ticksBySymbol)

	// Record the end-of-day portfolio. Portfolio is a value type, so the
	// history holds independent snapshots.
	l.history = append(l.history, l.portfolio)
}

func (l *Ledger) logSkippedSymbols(ticksBySymbol map[string]models.MarketTick) {
	for _, symbol := range l.AllSymbols() {
		if _, found := ticksBySymbol[symbol]; found {
			continue
		}
		for _, order := range l.OrdersBySymbol(symbol) {
			if order.State.IsOutstanding() {
				log.Warnf("Ledger: RunOnMarketTicks: symbol=%s has outstanding orders but no market tick today, skipping", symbol)
				break
			}
		}
	}
}

// executeOrdersOnMarketTick processes the symbol's outstanding orders in a
// fixed priority: market, then stop, then limit. Executing stop orders
// ahead of limit orders means a limit order can be cancelled by a stop fill
// before it would itself have filled; this is a known simplification, not a
// real-market priority guarantee.
func (l *Ledger) executeOrdersOnMarketTick(tick models.MarketTick) {
	orders := l.OrdersBySymbol(tick.Symbol)

	for _, order := range orders {
		if order.State.IsOutstanding() && order.Type.Validate() != nil {
			panic("Ledger: executeOrdersOnMarketTick: unsupported order type " + string(order.Type))
		}
	}

	for _, orderType := range []models.OrderType{models.Market, models.Stop, models.Limit} {
		for _, order := range orders {
			if order.State.IsTerminal() {
				continue
			}
			if order.Type != orderType {
				continue
			}
			if !order.IsExecutable(tick.DtIdx) {
				log.Debugf("Ledger: executeOrdersOnMarketTick: order=%s outside validity window, skipping", order)
				continue
			}

			switch order.Type {
			case models.Market:
				l.executeMarketOrder(order, tick)
			case models.Stop:
				l.executeStopOrder(order, tick)
			case models.Limit:
				l.executeLimitOrder(order, tick)
			}
		}
	}
}

func (l *Ledger) signedQuantity(order *models.Order) float64 {
	if order.Direction == models.Buy {
		return order.QuantityOutstanding
	}
	return -order.QuantityOutstanding
}

// executeMarketOrder always fully fills at the tick's open price. If the
// order anchors a bracket, the linked limit / stop prices derive from the
// execution price.
func (l *Ledger) executeMarketOrder(order *models.Order, tick models.MarketTick) {
	log.Debugf("Ledger: executeMarketOrder: order=%s, tick=%s", order, tick)

	quantityChanged := l.signedQuantity(order)
	order.Fill(tick.Open, order.QuantityOutstanding, tick.DtIdx, l.commissions)

	if order.State == models.OrderStateFullyFilled {
		l.updateLimitStopPriceOnMarketOrderFilled(order, tick.Open)
	}

	l.position(order.Symbol).Change(tick.Open, quantityChanged, order.Commission)
}

// executeLimitOrder fills at the limit price when the bar trades through it.
// Conservative assumption: no price improvement, e.g. an open above a sell
// limit still fills at the limit price.
func (l *Ledger) executeLimitOrder(order *models.Order, tick models.MarketTick) {
	log.Debugf("Ledger: executeLimitOrder: order=%s, tick=%s", order, tick)

	filled := (order.Direction == models.Buy && order.Price >= tick.Low) ||
		(order.Direction == models.Sell && order.Price <= tick.High)
	if !filled {
		return
	}

	quantityChanged := l.signedQuantity(order)
	order.Fill(order.Price, order.QuantityOutstanding, tick.DtIdx, l.commissions)

	if order.State == models.OrderStateFullyFilled {
		l.cancelLinkedOrders(order, tick.DtIdx)
	}

	l.position(order.Symbol).Change(order.Price, quantityChanged, order.Commission)
}

// executeStopOrder fills at the stop price when the bar trades through it.
func (l *Ledger) executeStopOrder(order *models.Order, tick models.MarketTick) {
	log.Debugf("Ledger: executeStopOrder: order=%s, tick=%s", order, tick)

	filled := (order.Direction == models.Buy && order.Price <= tick.High) ||
		(order.Direction == models.Sell && order.Price >= tick.Low)
	if !filled {
		return
	}

	quantityChanged := l.signedQuantity(order)
	order.Fill(order.Price, order.QuantityOutstanding, tick.DtIdx, l.commissions)

	if order.State == models.OrderStateFullyFilled {
		l.cancelLinkedOrders(order, tick.DtIdx)
	}

	l.position(order.Symbol).Change(order.Price, quantityChanged, order.Commission)
}

// updateLimitStopPriceOnMarketOrderFilled derives the limit / stop price of
// linked orders carrying a pct-from-market offset, anchoring them to the
// market order's execution price.
func (l *Ledger) updateLimitStopPriceOnMarketOrderFilled(order *models.Order, price float64) {
	if order.LinkID == nil {
		return
	}

	for _, linked := range l.OrdersByLinkID(*order.LinkID) {
		if linked.ID == order.ID {
			continue
		}
		if linked.Type != models.Limit && linked.Type != models.Stop {
			continue
		}
		if linked.PctFromMarket == nil {
			continue
		}

		linked.Price = price * (1 + *linked.PctFromMarket)
		log.Infof("Ledger: updateLimitStopPriceOnMarketOrderFilled: updated order=%s", linked)
	}
}

// cancelLinkedOrders cancels the NEW-state siblings of a fully filled
// order: a realized exit deactivates the other exit in the bracket.
func (l *Ledger) cancelLinkedOrders(order *models.Order, dtIdx time.Time) {
	if order.LinkID == nil {
		return
	}

	for _, linked := range l.OrdersByLinkID(*order.LinkID) {
		if linked.ID != order.ID && linked.State == models.OrderStateNew {
			linked.Cancel(dtIdx)
		}
	}
}

func (l *Ledger) updateMtmOnMarketTick(tick models.MarketTick) {
	l.position(tick.Symbol).UpdateMtm(tick.Close)
}
