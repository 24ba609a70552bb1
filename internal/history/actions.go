package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dtnitsch/article-summarizer/internal/app"
	"github.com/dtnitsch/article-summarizer/internal/common"
	"github.com/dtnitsch/article-summarizer/pkg/browser"
	"github.com/dtnitsch/article-summarizer/pkg/render"
	"github.com/dtnitsch/article-summarizer/pkg/workflow"
	"github.com/urfave/cli/v2"
)

type entry struct {
	Index             int    `json:"index"`
	URL               string `json:"url"`
	Summary           string `json:"summary"`
	TranslatedSummary string `json:"translatedSummary,omitempty"`
}

// HistoryAction lists past lookups, newest first.
func HistoryAction(c *cli.Context) error {
	session, closeFn, err := app.OpenHistoryFromCLI(c)
	if err != nil {
		return err
	}
	defer closeFn()

	articles := session.History()
	if limit := c.Int("limit"); limit > 0 && limit < len(articles) {
		articles = articles[:limit]
	}

	if c.IsSet("fields") || c.Bool("terse") {
		enc := json.NewEncoder(os.Stdout)
		for i, a := range articles {
			e := entry{Index: i, URL: a.URL, Summary: a.Summary, TranslatedSummary: a.TranslatedSummary}
			if err := enc.Encode(common.FilterFields(e, c.String("fields"), c.Bool("terse"))); err != nil {
				return err
			}
		}
		return nil
	}

	if len(articles) == 0 {
		fmt.Println("No articles in history")
		return nil
	}

	fmt.Printf("%-6s %-11s %s\n", "Index", "Translated", "URL")
	fmt.Println(strings.Repeat("-", 80))
	for i, a := range articles {
		translated := "no"
		if a.Translated() {
			translated = "yes"
		}
		fmt.Printf("%-6d %-11s %s\n", i, translated, a.URL)
	}
	fmt.Printf("\nTotal: %d articles\n", len(session.History()))
	fmt.Printf("\nTip: Use 'summarizer show <index>' to read one\n")
	return nil
}

// ShowAction makes a history entry the current article and prints it.
func ShowAction(c *cli.Context) error {
	session, closeFn, err := app.OpenHistoryFromCLI(c)
	if err != nil {
		return err
	}
	defer closeFn()

	index, err := parseIndex(c)
	if err != nil {
		return err
	}
	article, err := session.Select(index)
	if errors.Is(err, workflow.ErrIndexOutOfRange) {
		return cli.Exit(err.Error(), 1)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Resumen del artículo (%s)\n\n", article.URL)
	fmt.Println(render.New().Article(article, c.Bool("html")))
	return nil
}

// OpenAction opens a history entry, or a literal URL, in the browser.
func OpenAction(c *cli.Context) error {
	target, err := resolveURL(c)
	if err != nil {
		return err
	}
	if err := browser.Open(target); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}

// CopyAction copies a history entry's URL, or a literal URL, to the clipboard.
func CopyAction(c *cli.Context) error {
	target, err := resolveURL(c)
	if err != nil {
		return err
	}
	if err := browser.Copy(target); err != nil {
		return fmt.Errorf("failed to copy %s: %w", target, err)
	}
	fmt.Printf("Copied %s\n", target)
	return nil
}

func parseIndex(c *cli.Context) (int, error) {
	if c.NArg() != 1 {
		return 0, cli.Exit("expected exactly one history index", 1)
	}
	index, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, cli.Exit(fmt.Sprintf("invalid history index: %s", c.Args().First()), 1)
	}
	return index, nil
}

// resolveURL treats a numeric argument as a history index and anything
// else as a URL.
func resolveURL(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit("expected a history index or a URL", 1)
	}
	arg := c.Args().First()

	if _, err := strconv.Atoi(arg); err != nil {
		cleaned, err := common.ValidateURL(arg)
		if err != nil {
			return "", cli.Exit(err.Error(), 1)
		}
		return cleaned, nil
	}

	session, closeFn, err := app.OpenHistoryFromCLI(c)
	if err != nil {
		return "", err
	}
	defer closeFn()

	index, err := parseIndex(c)
	if err != nil {
		return "", err
	}
	article, err := session.Select(index)
	if err != nil {
		return "", cli.Exit(err.Error(), 1)
	}
	return article.URL, nil
}
