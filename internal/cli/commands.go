package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/dataflows"
	"github.com/dyike/MoexGo/internal/display"
	"github.com/dyike/MoexGo/internal/models"
	"github.com/dyike/MoexGo/internal/monitor"
	"github.com/dyike/MoexGo/internal/rebalance"
	"github.com/dyike/MoexGo/internal/report"
)

const defaultPortfolioFile = "portfolio.json"

// analyzeOptions carries the flags of one analysis run.
type analyzeOptions struct {
	portfolioPath string
	risk          string
	concurrency   int
	sequential    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "moexgo",
		Short: "MoexGo - AI-анализ портфеля Московской биржи",
		Long: `MoexGo прогоняет каждый тикер портфеля через семиэтапный AI-конвейер
(новости рынка, новости компании, котировки MOEX, теханализ, отчетность МСФО)
и строит план ребалансировки с учетом комиссий и налогов.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start the interactive flow
			return runInteractive(cfg)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newRebalanceCmd(cfg))
	rootCmd.AddCommand(newReportCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Проанализировать портфель и построить план ребалансировки",
		Long: `Загружает портфель из JSON-файла (тикер → количество, "RUB" — свободные
средства), анализирует каждую позицию и сохраняет отчет в results/.
Example: moexgo analyze -p portfolio.json -r conservative -c 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.portfolioPath, "portfolio", "p", defaultPortfolioFile, "Portfolio JSON file")
	cmd.Flags().StringVarP(&opts.risk, "risk", "r", "", "Risk profile: conservative, balanced or aggressive")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 0, "Max tickers analyzed in parallel (default from config)")
	cmd.Flags().BoolVar(&opts.sequential, "sequential", false, "Analyze tickers one by one")

	return cmd
}

// newRebalanceCmd creates the rebalance command. It reuses a saved
// recommendations file, so no AI calls are made.
func newRebalanceCmd(cfg *config.Config) *cobra.Command {
	var portfolioPath, recPath string

	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Построить план ребалансировки по сохраненным рекомендациям",
		Long: `Загружает рекомендации прошлого запуска analyze и пересчитывает план
ребалансировки по текущим ценам MOEX. Запросы к AI не выполняются.
Example: moexgo rebalance -p portfolio.json --recommendations results/recommendations_20240301_120000.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebalance(cfg, portfolioPath, recPath)
		},
	}

	cmd.Flags().StringVarP(&portfolioPath, "portfolio", "p", defaultPortfolioFile, "Portfolio JSON file")
	cmd.Flags().StringVar(&recPath, "recommendations", "", "Saved recommendations file (default: newest in results dir)")

	return cmd
}

// newReportCmd creates the report command: render a saved run in the
// terminal without touching the network.
func newReportCmd(cfg *config.Config) *cobra.Command {
	var recPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Показать результаты сохраненного анализа",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cfg, recPath)
		},
	}

	cmd.Flags().StringVar(&recPath, "recommendations", "", "Saved recommendations file (default: newest in results dir)")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("MoexGo v1.0.0")
			fmt.Println("AI-анализ портфеля Московской биржи")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

// runAnalyze executes the full analysis workflow: load, analyze,
// allocate, render, persist.
func runAnalyze(cfg *config.Config, opts analyzeOptions) error {
	ctx := context.Background()

	riskName := opts.risk
	if riskName == "" {
		riskName = cfg.RiskProfile
	}
	risk, err := models.ParseRiskProfile(riskName)
	if err != nil {
		return err
	}

	// Fail fast on portfolio problems before any network call.
	portfolio, err := LoadPortfolioFile(opts.portfolioPath, risk)
	if err != nil {
		return err
	}

	app, err := newApp(ctx, cfg, risk, opts.concurrency)
	if err != nil {
		return err
	}

	display.DisplayTitle("MoexGo — анализ портфеля")
	display.DisplayInfo(fmt.Sprintf("Позиций: %d, свободные средства: %.2f RUB, профиль: %s",
		len(portfolio.Positions), portfolio.CashRUB, risk))

	started := time.Now()
	var results map[string]*models.AnalysisResult
	if opts.sequential {
		results = app.analyzer.AnalyzeSequential(ctx, portfolio)
	} else {
		results = app.analyzer.AnalyzePortfolio(ctx, portfolio)
	}
	display.DisplayInfo(fmt.Sprintf("Анализ занял %s", time.Since(started).Round(time.Second)))

	plan := app.allocator.Allocate(ctx, results, portfolio)
	value := rebalance.PortfolioValue(ctx, app.prices, portfolio)

	fmt.Println(display.RenderResults(results))
	fmt.Println(display.RenderPlan(plan))
	display.DisplayInfo(fmt.Sprintf("Текущая стоимость позиций: %.2f RUB", value))
	fmt.Println(display.RenderPerformance(app.monitor.Report()))

	summary := report.BuildPortfolioSummary(results, portfolio)
	reportPath, err := app.writer.WriteAnalysisReport(portfolio, results, plan, summary, app.monitor.Report())
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	recPath, err := app.writer.WriteRecommendations(results)
	if err != nil {
		return fmt.Errorf("save recommendations: %w", err)
	}

	display.DisplaySuccess(fmt.Sprintf("Отчет сохранен: %s", reportPath))
	display.DisplaySuccess(fmt.Sprintf("Рекомендации сохранены: %s", recPath))
	return nil
}

// runRebalance rebuilds the allocation plan from saved recommendations and
// live MOEX prices.
func runRebalance(cfg *config.Config, portfolioPath, recPath string) error {
	ctx := context.Background()

	risk, err := models.ParseRiskProfile(cfg.RiskProfile)
	if err != nil {
		return err
	}
	portfolio, err := LoadPortfolioFile(portfolioPath, risk)
	if err != nil {
		return err
	}

	if recPath == "" {
		recPath, err = report.LatestRecommendations(cfg.ResultsDir)
		if err != nil {
			return err
		}
		display.DisplayInfo(fmt.Sprintf("Использую рекомендации: %s", recPath))
	}
	results, err := report.LoadRecommendations(recPath)
	if err != nil {
		return err
	}

	mon := monitor.New(monitor.DefaultHistoryLimit)
	moex := dataflows.NewMoexClient(cfg, mon)
	prices := buildPriceChain(cfg, moex)

	plan := rebalance.NewAllocator(prices).Allocate(ctx, results, portfolio)

	fmt.Println(display.RenderPlan(plan))
	display.DisplayInfo(fmt.Sprintf("Текущая стоимость позиций: %.2f RUB",
		rebalance.PortfolioValue(ctx, prices, portfolio)))
	return nil
}

// runReport re-renders a saved run in the terminal.
func runReport(cfg *config.Config, recPath string) error {
	var err error
	if recPath == "" {
		recPath, err = report.LatestRecommendations(cfg.ResultsDir)
		if err != nil {
			return err
		}
		display.DisplayInfo(fmt.Sprintf("Использую рекомендации: %s", recPath))
	}
	results, err := report.LoadRecommendations(recPath)
	if err != nil {
		return err
	}

	fmt.Println(display.RenderResults(results))
	return nil
}

// showConfig displays the current configuration
func showConfig(cfg *config.Config) {
	fmt.Println("📋 Текущая конфигурация MoexGo:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Printf("Results Directory:    %s\n", cfg.ResultsDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("LLM Provider:         %s\n", cfg.LLMProvider)
	fmt.Printf("Model:                %s\n", cfg.DeepSeekModel)
	fmt.Printf("Base URL:             %s\n", cfg.DeepSeekBaseURL)
	fmt.Printf("Max Tokens:           %d\n", cfg.MaxTokens)
	fmt.Println()
	fmt.Printf("Risk Profile:         %s\n", cfg.RiskProfile)
	fmt.Printf("Max Concurrent:       %d\n", cfg.MaxConcurrentTasks)
	fmt.Printf("MOEX Lookback:        %d days\n", cfg.MoexDaysLookback)
	fmt.Printf("Recent Window:        %d days\n", cfg.RecentDataDays)
	fmt.Printf("News Lookback:        %d days\n", cfg.NewsDaysLookback)
	fmt.Println()
	fmt.Printf("API Timeout:          %s\n", cfg.APITimeout)
	fmt.Printf("Max Retries:          %d\n", cfg.MaxRetries)
	fmt.Printf("Retry Delay:          %s\n", cfg.RetryDelay)
	fmt.Println()
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Cache TTL:            %s\n", cfg.CacheTTL)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
	fmt.Printf("Eino Debug:           %t\n", cfg.EinoDebugEnabled)
	if cfg.EinoDebugEnabled {
		fmt.Printf("Debug URL:            http://localhost:%d\n", cfg.EinoDebugPort)
	}
	fmt.Println()

	fmt.Println("🔌 API Configuration:")
	fmt.Println("─────────────────────")
	if cfg.DeepSeekAPIKey != "" {
		fmt.Println("DeepSeek API:         ✅ Configured")
	} else {
		fmt.Println("DeepSeek API:         ❌ Not configured")
	}
	if cfg.LongportEnabled() {
		fmt.Println("Longport API:         ✅ Configured")
	} else {
		fmt.Println("Longport API:         ⚪ Not configured (optional)")
	}
}

// validateConfig checks that the configuration can produce a working run
func validateConfig(cfg *config.Config) error {
	fmt.Println("🔍 Проверка конфигурации MoexGo...")
	fmt.Println("═══════════════════════════════════════")

	fmt.Print("📁 Checking directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Println("❌")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Println("✅")

	fmt.Print("⚙️  Checking configuration values... ")
	if err := cfg.Validate(); err != nil {
		fmt.Println("❌")
		return err
	}
	fmt.Println("✅")

	fmt.Print("🔑 Checking optional API keys... ")
	var warnings []string
	if !cfg.LongportEnabled() {
		warnings = append(warnings, "Longport credentials not configured; quotes fall back to MOEX and Yahoo")
	}
	if len(warnings) > 0 {
		fmt.Println("⚠️")
		for _, warning := range warnings {
			fmt.Printf("  ⚠️  %s\n", warning)
		}
	} else {
		fmt.Println("✅")
	}

	fmt.Println()
	fmt.Println("✅ Конфигурация пригодна для запуска.")
	fmt.Println()
	fmt.Println("💡 Tips:")
	fmt.Println("  • Set DEEPSEEK_API_KEY environment variable (or .env) for analysis")
	fmt.Println("  • Use 'moexgo analyze -p portfolio.json' to start your first analysis")

	return nil
}
