package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/backtest-engine/src/backtest"
	"github.com/jiaming2012/backtest-engine/src/models"
	"github.com/jiaming2012/backtest-engine/src/utils"
)

type RunArgs struct {
	BarsFile      string
	StrategyFile  string
	Config        *models.BacktestConfig
	WalkForward   int
	InSampleRatio float64
}

var runCmd = &cobra.Command{
	Use:   "backtester --bars data.csv --strategy strategy.yaml",
	Short: "Run a deterministic strategy backtest over a CSV bar series",
	Run: func(cmd *cobra.Command, args []string) {
		barsFile, err := cmd.Flags().GetString("bars")
		if err != nil {
			log.Fatalf("error getting bars: %v", err)
		}

		strategyFile, err := cmd.Flags().GetString("strategy")
		if err != nil {
			log.Fatalf("error getting strategy: %v", err)
		}

		balance, _ := cmd.Flags().GetFloat64("balance")
		symbol, _ := cmd.Flags().GetString("symbol")
		spread, _ := cmd.Flags().GetFloat64("spread")
		commission, _ := cmd.Flags().GetFloat64("commission")
		digits, _ := cmd.Flags().GetInt("digits")
		pointValue, _ := cmd.Flags().GetFloat64("pointValue")
		walkForward, _ := cmd.Flags().GetInt("walkForward")
		inSampleRatio, _ := cmd.Flags().GetFloat64("inSampleRatio")

		cfg := models.NewBacktestConfig(balance, symbol)
		cfg.Spread = spread
		cfg.Commission = commission
		cfg.Digits = digits
		cfg.PointValue = pointValue

		if err := Run(RunArgs{
			BarsFile:      barsFile,
			StrategyFile:  strategyFile,
			Config:        cfg,
			WalkForward:   walkForward,
			InSampleRatio: inSampleRatio,
		}); err != nil {
			log.Fatalf("Error: %v", err)
		}

		log.Info("Done")
	},
}

func Run(args RunArgs) error {
	if err := utils.InitEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to init environment variables: %w", err)
	}

	bars, err := utils.LoadBarsFromCsv(args.BarsFile)
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}

	graph, err := utils.LoadStrategyFromYaml(args.StrategyFile)
	if err != nil {
		return fmt.Errorf("failed to load strategy: %w", err)
	}

	log.Infof("Loaded %d bars for %s", len(bars), args.Config.Symbol)

	if args.WalkForward > 0 {
		result, err := backtest.RunWalkForward(bars, graph, args.Config, args.WalkForward, args.InSampleRatio)
		if err != nil {
			return fmt.Errorf("walk-forward run failed: %w", err)
		}

		fmt.Println(renderWalkForward(result))
		return nil
	}

	result, err := backtest.RunBacktest(bars, graph, args.Config)
	if err != nil {
		return fmt.Errorf("backtest run failed: %w", err)
	}

	for _, warning := range result.Warnings {
		log.Warn(warning)
	}

	fmt.Println(renderSummary(result))
	return nil
}

func renderSummary(result *models.BacktestResult) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)
	s := result.Summary

	display.WriteString(fmt.Sprintf("Backtest: %d bars in %v\n", result.BarsProcessed, result.Duration))

	table := tablewriter.NewWriter(display)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	table.Append([]string{"Net Profit", p.Sprintf("$%.2f", s.NetProfit)})
	table.Append([]string{"Total Trades", p.Sprintf("%d", s.TotalTrades)})
	table.Append([]string{"Win Rate", p.Sprintf("%.1f%%", s.WinRate*100)})
	table.Append([]string{"Profit Factor", p.Sprintf("%.2f", s.ProfitFactor)})
	table.Append([]string{"Expected Payoff", p.Sprintf("$%.2f", s.ExpectedPayoff)})
	table.Append([]string{"Max Drawdown", p.Sprintf("$%.2f (%.1f%%)", s.MaxDrawdown, s.MaxDrawdownPercent*100)})
	table.Append([]string{"Sharpe", p.Sprintf("%.3f", s.SharpeRatio)})
	table.Append([]string{"Sortino", p.Sprintf("%.3f", s.SortinoRatio)})
	table.Append([]string{"Calmar", p.Sprintf("%.3f", s.CalmarRatio)})
	table.Append([]string{"Recovery Factor", p.Sprintf("%.2f", s.RecoveryFactor)})
	table.Append([]string{"Ulcer Index", p.Sprintf("%.3f", s.UlcerIndex)})
	table.Append([]string{"Long / Short", p.Sprintf("%d / %d", s.LongTrades, s.ShortTrades)})
	table.Render()

	return display.String()
}

func renderWalkForward(result *models.WalkForwardResult) string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"Window", "IS Profit", "OOS Profit"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, w := range result.Windows {
		table.Append([]string{
			p.Sprintf("%d", w.Index),
			p.Sprintf("$%.2f", w.InSampleProfit),
			p.Sprintf("$%.2f", w.OutOfSampleProfit),
		})
	}
	table.Render()

	display.WriteString(p.Sprintf("Walk-forward efficiency: %.3f (%d windows)\n", result.WalkForwardEfficiency, len(result.Windows)))

	return display.String()
}

func main() {
	runCmd.PersistentFlags().String("bars", "", "CSV file holding the OHLCV bar series.")
	runCmd.PersistentFlags().String("strategy", "", "YAML file describing the strategy graph.")
	runCmd.PersistentFlags().Float64("balance", 10000, "Initial account balance.")
	runCmd.PersistentFlags().String("symbol", "EURUSD", "Symbol label for the run.")
	runCmd.PersistentFlags().Float64("spread", 0, "Spread in points.")
	runCmd.PersistentFlags().Float64("commission", 0, "Commission per lot per side.")
	runCmd.PersistentFlags().Int("digits", 5, "Price decimal precision.")
	runCmd.PersistentFlags().Float64("pointValue", 1.0, "Account-currency value of one point per lot.")
	runCmd.PersistentFlags().Int("walkForward", 0, "Number of walk-forward windows (0 runs a plain backtest).")
	runCmd.PersistentFlags().Float64("inSampleRatio", 0.7, "In-sample fraction of each walk-forward window.")
	runCmd.MarkPersistentFlagRequired("bars")
	runCmd.MarkPersistentFlagRequired("strategy")
	runCmd.Execute()
}
