package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dyike/MoexGo/internal/models"
)

// LoadPortfolioFile reads a portfolio JSON file: a flat map of ticker to
// quantity, with the "RUB" entry holding free cash. Validation failures
// surface here, before any network call.
func LoadPortfolioFile(path string, risk models.RiskProfile) (*models.Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portfolio %s: %w", path, err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse portfolio %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("portfolio %s is empty", path)
	}

	portfolio, err := models.NewPortfolioFromMap(raw, risk)
	if err != nil {
		return nil, fmt.Errorf("portfolio %s: %w", path, err)
	}
	return portfolio, nil
}
