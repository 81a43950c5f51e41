// Package debug hosts the optional eino visual debug server. When enabled
// it exposes compiled graphs for inspection at http://localhost:<port>.
package debug

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/dyike/MoexGo/internal/config"
)

// Init starts the debug server when EINO_DEBUG_ENABLED is set. It must run
// before graph compilation so the devops callbacks attach to the graph.
func Init(ctx context.Context, cfg *config.Config) error {
	if !cfg.EinoDebugEnabled {
		return nil
	}

	if err := devops.Init(ctx); err != nil {
		return fmt.Errorf("init eino debug server: %w", err)
	}

	log.Printf("[Debug] eino debug server at http://localhost:%d", cfg.EinoDebugPort)
	return nil
}
