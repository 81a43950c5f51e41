package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dyike/MoexGo/internal/models"
)

// WriteRecommendations saves the raw per-ticker results as JSON so a later
// rebalance or report run can reuse them without repeating the analysis.
func (w *Writer) WriteRecommendations(results map[string]*models.AnalysisResult) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode recommendations: %w", err)
	}
	name := fmt.Sprintf("recommendations_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write recommendations: %w", err)
	}
	return path, nil
}

// LoadRecommendations reads a saved recommendations file back into the
// per-ticker result map.
func LoadRecommendations(path string) (map[string]*models.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recommendations: %w", err)
	}
	var results map[string]*models.AnalysisResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("parse recommendations %s: %w", path, err)
	}
	return results, nil
}

// LatestRecommendations returns the newest recommendations file under dir.
// Timestamped names sort lexicographically in run order.
func LatestRecommendations(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "recommendations_*.json"))
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no saved recommendations in %s", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
