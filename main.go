package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/article-summarizer/internal/history"
	"github.com/dtnitsch/article-summarizer/internal/summarize"
	"github.com/dtnitsch/article-summarizer/models"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func newApp() *cli.App {
	return &cli.App{
		Name:    "summarizer",
		Usage:   "Summarize an article URL, translate the summary and keep a history of lookups",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   models.DefaultConfigPath,
				Usage:   "path to config file",
				EnvVars: []string{"SUMMARIZER_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "only log errors",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "keep history in memory for this run only",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "summarize",
				Aliases:   []string{"s"},
				Usage:     "Summarize an article and translate the summary",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the result as JSON"},
					&cli.BoolFlag{Name: "html", Usage: "print sanitized HTML instead of plain text"},
				},
				Action: summarize.SummarizeAction,
			},
			{
				Name:  "history",
				Usage: "List past lookups, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "show at most N entries"},
					&cli.StringFlag{Name: "fields", Usage: "comma separated fields to print as JSON lines (index,url,summary,translatedSummary)"},
					&cli.BoolFlag{Name: "terse", Usage: "use short field names in JSON lines"},
				},
				Action: history.HistoryAction,
			},
			{
				Name:      "show",
				Usage:     "Show a history entry",
				ArgsUsage: "<index>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "html", Usage: "print sanitized HTML instead of plain text"},
				},
				Action: history.ShowAction,
			},
			{
				Name:      "open",
				Usage:     "Open a history entry or URL in the browser",
				ArgsUsage: "<index|url>",
				Action:    history.OpenAction,
			},
			{
				Name:      "copy",
				Usage:     "Copy a history entry's URL to the clipboard",
				ArgsUsage: "<index|url>",
				Action:    history.CopyAction,
			},
		},
	}
}

func main() {
	// .env is optional; it usually carries the RapidAPI keys
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
