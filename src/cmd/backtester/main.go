package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/magi-quant/backtester/src/datahub"
	"github.com/magi-quant/backtester/src/ledger"
	"github.com/magi-quant/backtester/src/models"
	"github.com/magi-quant/backtester/src/perfeval"
	"github.com/magi-quant/backtester/src/strategy"
	"github.com/magi-quant/backtester/src/utils"
)

type RunArgs struct {
	GoEnv        string
	ConfigPath   string
	DataDir      string
	Capital      float64
	RiskFree     float64
	TradingDays  int
	StrategyName string
}

var runCmd = &cobra.Command{
	Use:   "backtester --data-dir data --capital 10000",
	Short: "Run a daily-bar backtest and print the performance report",
	Run: func(cmd *cobra.Command, args []string) {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			log.Fatalf("error getting go-env: %v", err)
		}
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}
		dataDir, err := cmd.Flags().GetString("data-dir")
		if err != nil {
			log.Fatalf("error getting data-dir: %v", err)
		}
		capital, err := cmd.Flags().GetFloat64("capital")
		if err != nil {
			log.Fatalf("error getting capital: %v", err)
		}
		riskFree, err := cmd.Flags().GetFloat64("risk-free")
		if err != nil {
			log.Fatalf("error getting risk-free: %v", err)
		}
		tradingDays, err := cmd.Flags().GetInt("trading-days")
		if err != nil {
			log.Fatalf("error getting trading-days: %v", err)
		}
		strategyName, err := cmd.Flags().GetString("strategy")
		if err != nil {
			log.Fatalf("error getting strategy: %v", err)
		}

		report, err := Run(RunArgs{
			GoEnv:        goEnv,
			ConfigPath:   configPath,
			DataDir:      dataDir,
			Capital:      capital,
			RiskFree:     riskFree,
			TradingDays:  tradingDays,
			StrategyName: strategyName,
		})
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		fmt.Println(report)
	},
}

func newStrategy(name string, cfg strategy.Config) (strategy.Strategy, error) {
	switch name {
	case "mean_reversion":
		return strategy.NewMeanReversion(cfg), nil
	case "mispricing":
		return strategy.NewMispricing(cfg), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

func Run(args RunArgs) (string, error) {
	if err := utils.InitEnvironmentVariables(args.GoEnv); err != nil {
		return "", fmt.Errorf("error loading environment variables: %w", err)
	}

	cfg := strategy.DefaultConfig()
	if args.ConfigPath != "" {
		var err error
		cfg, err = strategy.LoadConfig(args.ConfigPath)
		if err != nil {
			return "", fmt.Errorf("error loading strategy config: %w", err)
		}
	}
	cfg.Log()

	hub := datahub.New()
	symbolData, err := hub.LoadDir(args.DataDir)
	if err != nil {
		return "", fmt.Errorf("error loading market data: %w", err)
	}

	ticksByDay := datahub.TicksByDay(symbolData)
	tradingDays := datahub.TradingDays(ticksByDay)
	if len(tradingDays) == 0 {
		return "", fmt.Errorf("no trading days found in %s", args.DataDir)
	}

	l := ledger.New(args.Capital, args.RiskFree, models.DefaultCommissionSchedule(), args.TradingDays)

	strat, err := newStrategy(args.StrategyName, cfg)
	if err != nil {
		return "", err
	}

	for _, day := range tradingDays {
		log.Info("============================================================")
		log.Infof("%s", day.Format("2006-01-02"))

		ticksBySymbol := ticksByDay[day]

		// Execute existing orders and update MTM, then let the strategy
		// observe the realized state and place orders for future days.
		l.RunOnMarketTicks(ticksBySymbol)
		strat.RunOnMarketTicks(l, ticksBySymbol)
	}

	summary, performances := l.EvaluatePerformance()
	l.DescribeTradesExecuted()

	return ledger.RenderPerformanceReport(summary, performances), nil
}

func main() {
	runCmd.PersistentFlags().String("go-env", "development", "environment: development or production")
	runCmd.PersistentFlags().String("config", "", "path to a YAML strategy config file")
	runCmd.PersistentFlags().String("data-dir", "data", "directory of per-symbol daily bar CSV files")
	runCmd.PersistentFlags().Float64("capital", 10000, "initial capital")
	runCmd.PersistentFlags().Float64("risk-free", perfeval.TBillYields[2017]/100, "annual risk free rate, e.g. 0.0083")
	runCmd.PersistentFlags().Int("trading-days", perfeval.DefaultTradingDays, "trading days per year")
	runCmd.PersistentFlags().String("strategy", "mean_reversion", "strategy: mean_reversion or mispricing")

	if err := runCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
