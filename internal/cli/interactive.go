package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/display"
	"github.com/dyike/MoexGo/internal/models"
)

// runInteractive collects a run configuration through survey prompts and
// then executes the same workflow as `moexgo analyze`.
func runInteractive(cfg *config.Config) error {
	display.DisplayTitle("MoexGo — AI-анализ портфеля Московской биржи")
	fmt.Println()

	path, err := promptPortfolioPath()
	if err != nil {
		return err
	}

	risk, err := promptRiskProfile(cfg.RiskProfile)
	if err != nil {
		return err
	}

	concurrency, err := promptConcurrency(cfg.MaxConcurrentTasks)
	if err != nil {
		return err
	}

	confirmed, err := promptConfirmation(path, risk, concurrency)
	if err != nil {
		return err
	}
	if !confirmed {
		display.DisplayInfo("Запуск отменен")
		return nil
	}

	return runAnalyze(cfg, analyzeOptions{
		portfolioPath: path,
		risk:          string(risk),
		concurrency:   concurrency,
	})
}

// promptPortfolioPath asks for the portfolio file and checks it exists.
func promptPortfolioPath() (string, error) {
	var path string
	prompt := &survey.Input{
		Message: "Файл портфеля (JSON, тикер → количество, \"RUB\" — свободные средства):",
		Default: defaultPortfolioFile,
		Help:    `Пример содержимого: {"SBER": 10, "GAZP": 5, "RUB": 15000}`,
	}

	err := survey.AskOne(prompt, &path, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return fmt.Errorf("укажите путь к файлу портфеля")
		}
		if _, err := os.Stat(str); err != nil {
			return fmt.Errorf("файл %s недоступен: %v", str, err)
		}
		return nil
	}))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// promptRiskProfile asks for the investor profile used in the final
// analysis prompt.
func promptRiskProfile(defaultProfile string) (models.RiskProfile, error) {
	options := []string{
		string(models.RiskConservative) + " — минимальный риск, дивидендные бумаги",
		string(models.RiskBalanced) + " — баланс риска и доходности",
		string(models.RiskAggressive) + " — допускается высокая волатильность",
	}

	defaultOption := options[1]
	for _, opt := range options {
		if strings.HasPrefix(opt, defaultProfile) {
			defaultOption = opt
		}
	}

	var selected string
	prompt := &survey.Select{
		Message: "Профиль инвестора:",
		Options: options,
		Default: defaultOption,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return models.ParseRiskProfile(strings.Split(selected, " —")[0])
}

// promptConcurrency asks how many tickers to analyze in parallel.
func promptConcurrency(defaultLimit int) (int, error) {
	var answer string
	prompt := &survey.Input{
		Message: "Сколько тикеров анализировать параллельно?",
		Default: strconv.Itoa(defaultLimit),
		Help:    "Каждый тикер — это несколько запросов к DeepSeek и MOEX; большие значения упираются в лимиты API.",
	}

	err := survey.AskOne(prompt, &answer, survey.WithValidator(func(val interface{}) error {
		n, err := strconv.Atoi(strings.TrimSpace(val.(string)))
		if err != nil {
			return fmt.Errorf("введите целое число")
		}
		if n < 1 || n > 32 {
			return fmt.Errorf("значение должно быть от 1 до 32")
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(answer))
}

// promptConfirmation shows the collected settings and asks to proceed.
func promptConfirmation(path string, risk models.RiskProfile, concurrency int) (bool, error) {
	fmt.Println()
	fmt.Println("Параметры запуска:")
	fmt.Printf("  Портфель:     %s\n", path)
	fmt.Printf("  Профиль:      %s\n", risk)
	fmt.Printf("  Параллельно:  %d\n", concurrency)
	fmt.Println()

	var confirmed bool
	prompt := &survey.Confirm{
		Message: "Запустить анализ?",
		Default: true,
	}
	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}
