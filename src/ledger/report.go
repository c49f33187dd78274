package ledger

import (
	"fmt"
	"math"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/magi-quant/backtester/src/models"
)

// RenderPerformanceReport renders the per-symbol performance records and the
// portfolio summary as a human-readable table.
func RenderPerformanceReport(summary *PortfolioPerformance, performances []*models.Performance) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	display.WriteString("Symbol Performance:\n")

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Symbol", "Filled Mkt", "Filled Stop", "Filled Limit", "Cancelled", "Success Rate", "Realized PnL", "Max Capital", "Avg Trade Life"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	for _, perf := range performances {
		cancelled := perf.CancelledMarketOrders + perf.CancelledStopOrders + perf.CancelledLimitOrders

		successRate := "n/a"
		if rate := perf.SuccessRate(); !math.IsNaN(rate) {
			successRate = fmt.Sprintf("%.1f%%", rate)
		}

		avgTradeLife := "no trades"
		if life, ok := perf.AvgTradeLife(); ok {
			avgTradeLife = life.String()
		}

		table.Append([]string{
			perf.Symbol,
			fmt.Sprintf("%d", perf.FilledMarketOrders),
			fmt.Sprintf("%d", perf.FilledStopOrders),
			fmt.Sprintf("%d", perf.FilledLimitOrders),
			fmt.Sprintf("%d", cancelled),
			successRate,
			p.Sprintf("%.2f", perf.RealizedPnl),
			p.Sprintf("$%.2f", perf.MaxCapitalRequired),
			avgTradeLife,
		})
	}

	table.Render()

	display.WriteString("\nPortfolio Summary:\n")

	successRate := "n/a"
	if summary.HasClosedTrades {
		successRate = fmt.Sprintf("%.1f%%", summary.SuccessRate)
	}

	sharpe := "undefined"
	if !math.IsNaN(summary.SharpeRatio) {
		sharpe = fmt.Sprintf("%.4f", summary.SharpeRatio)
	}

	portfolioTable := tablewriter.NewWriter(display)
	portfolioTable.SetAlignment(tablewriter.ALIGN_LEFT)
	portfolioTable.SetColumnSeparator("")
	portfolioTable.Append([]string{"Realized PnL", p.Sprintf("%.2f", summary.Portfolio.RealizedPnl)})
	portfolioTable.Append([]string{"Cash Balance", p.Sprintf("$%.2f", summary.Portfolio.CashBalance)})
	portfolioTable.Append([]string{"Position MTM", p.Sprintf("$%.2f", summary.Portfolio.PositionMtm)})
	portfolioTable.Append([]string{"Max Capital Required", p.Sprintf("$%.2f", summary.MaxCapitalRequired)})
	portfolioTable.Append([]string{"Success / Failure", fmt.Sprintf("%d / %d (%s)", summary.Success, summary.Failure, successRate)})
	portfolioTable.Append([]string{"Annualized Return", fmt.Sprintf("%.4f", summary.AnnualizedReturn)})
	portfolioTable.Append([]string{"Annualized Volatility", fmt.Sprintf("%.4f", summary.AnnualizedVolatility)})
	portfolioTable.Append([]string{"Sharpe Ratio", sharpe})
	portfolioTable.Render()

	return display.String()
}
