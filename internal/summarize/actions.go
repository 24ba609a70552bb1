package summarize

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dtnitsch/article-summarizer/internal/app"
	"github.com/dtnitsch/article-summarizer/internal/common"
	"github.com/dtnitsch/article-summarizer/pkg/render"
	"github.com/dtnitsch/article-summarizer/pkg/workflow"
	"github.com/urfave/cli/v2"
)

// Output is the --json form of a finished submission.
type Output struct {
	URL               string `json:"url"`
	Summary           string `json:"summary,omitempty"`
	TranslatedSummary string `json:"translatedSummary,omitempty"`
	DetectedLanguage  string `json:"detectedLanguage,omitempty"`
	Error             string `json:"error,omitempty"`
	HistoryCount      int    `json:"historyCount"`
}

func SummarizeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("Usage: summarizer summarize <url>", 1)
	}

	articleURL, err := common.ValidateURL(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	progress := func(st workflow.State) {
		if st.InFlight && !c.Bool("quiet") && !c.Bool("json") {
			fmt.Fprintf(os.Stderr, "... %s\n", st.Phase)
		}
	}

	session, closeFn, err := app.OpenFromCLI(c, progress)
	if err != nil {
		return err
	}
	defer closeFn()

	state, err := session.Submit(c.Context, articleURL)
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidURL) {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		return err
	}

	if c.Bool("json") {
		return writeJSON(state)
	}
	return writeText(state, c.Bool("html"))
}

func writeJSON(state workflow.State) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(Output{
		URL:               state.Current.URL,
		Summary:           state.Current.Summary,
		TranslatedSummary: state.Current.TranslatedSummary,
		DetectedLanguage:  state.DetectedLanguage,
		Error:             state.Error,
		HistoryCount:      len(state.History),
	})
}

func writeText(state workflow.State, asHTML bool) error {
	r := render.New()

	if state.Current.Summary != "" {
		fmt.Printf("Resumen del artículo (%s)\n\n", state.Current.URL)
		fmt.Println(r.Article(state.Current, asHTML))
	} else if state.Error == "" {
		fmt.Println("No summary available for this article.")
	}

	if state.Error != "" {
		return cli.Exit("Esto no debería pasar... "+state.Error, 1)
	}
	return nil
}
