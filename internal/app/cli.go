package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dtnitsch/article-summarizer/models"
	"github.com/dtnitsch/article-summarizer/pkg/workflow"
	"github.com/urfave/cli/v2"
)

func loadFromCLI(c *cli.Context) (*models.Config, *slog.Logger, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, NewLogger(os.Stderr, cfg.Log.Level, c.Bool("quiet")), nil
}

// OpenFromCLI loads the config named by the global flags and builds a session.
func OpenFromCLI(c *cli.Context, onChange func(workflow.State)) (*workflow.Session, func() error, error) {
	cfg, logger, err := loadFromCLI(c)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return Build(c.Context, cfg, logger, c.Bool("ephemeral"), onChange)
}

// OpenHistoryFromCLI is OpenFromCLI for commands that only read the history.
func OpenHistoryFromCLI(c *cli.Context) (*workflow.Session, func() error, error) {
	cfg, logger, err := loadFromCLI(c)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return OpenHistory(c.Context, cfg, logger, c.Bool("ephemeral"))
}
