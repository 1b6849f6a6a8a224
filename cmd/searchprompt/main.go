// Command searchprompt is an interactive search box over the content catalog.
// Each line read from stdin replaces the query; results print once the
// debounce interval passes without new input.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/sitesearch-mcp/internal/config"
	"github.com/dshills/sitesearch-mcp/internal/indexer"
	"github.com/dshills/sitesearch-mcp/internal/searcher"
	"github.com/dshills/sitesearch-mcp/internal/source"
	"github.com/dshills/sitesearch-mcp/internal/storage"
	"github.com/dshills/sitesearch-mcp/pkg/types"
)

var (
	fromMarkdown bool
	jsonOutput   bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "searchprompt",
	Short: "Interactive debounced search over site content",
	Long: `searchprompt reads queries from stdin, one per line, and prints the
ranked results once typing pauses for the debounce interval.

Example usage:
  searchprompt                 # Search the indexed catalog
  searchprompt --markdown      # Search the markdown content directory directly
  echo modal | searchprompt --json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().BoolVar(&fromMarkdown, "markdown", false, "load records from the content directory instead of the catalog")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	logger := cfg.NewLogger(os.Stderr)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := loadRecords(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("records loaded", "count", len(records), "markdown", fromMarkdown)

	settled := make(chan searcher.State, 16)
	searchCfg := cfg.SearchConfig()
	searchCfg.Logger = logger.With("component", "searcher")
	searchCfg.OnSettle = func(s searcher.State) { settled <- s }

	engine := searcher.New(records, searchCfg)
	defer engine.Close()

	return prompt(cmd.InOrStdin(), cmd.OutOrStdout(), engine, settled)
}

// prompt feeds lines into the engine and prints every settled state. At end
// of input it waits for the last query to settle.
func prompt(in io.Reader, out io.Writer, engine *searcher.Engine, settled <-chan searcher.State) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	pending := false
	last := ""
	wait := engine.Config().DebounceInterval * 10

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return err
				}
				if !pending {
					return nil
				}
				return drain(out, settled, last, wait)
			}
			engine.SetQuery(line)
			pending, last = true, line
		case s := <-settled:
			if s.DebouncedQuery == last {
				pending = false
			}
			if err := render(out, s); err != nil {
				return err
			}
		}
	}
}

func drain(out io.Writer, settled <-chan searcher.State, last string, wait time.Duration) error {
	timeout := time.After(wait)
	for {
		select {
		case s := <-settled:
			if err := render(out, s); err != nil {
				return err
			}
			if s.DebouncedQuery == last {
				return nil
			}
		case <-timeout:
			return fmt.Errorf("timed out waiting for %q to settle", last)
		}
	}
}

func render(out io.Writer, s searcher.State) error {
	if jsonOutput {
		type item struct {
			Rank  int    `json:"rank"`
			Score int    `json:"score"`
			Title string `json:"title"`
			URL   string `json:"url"`
		}
		items := make([]item, 0, len(s.Results))
		for _, r := range s.Results {
			items = append(items, item{Rank: r.Rank, Score: r.RelevanceScore, Title: r.Record.Title, URL: r.Record.URL})
		}
		enc := json.NewEncoder(out)
		return enc.Encode(map[string]interface{}{"query": s.DebouncedQuery, "results": items})
	}

	if !s.HasResults() {
		_, err := fmt.Fprintf(out, "%q: no results\n", s.DebouncedQuery)
		return err
	}
	if _, err := fmt.Fprintf(out, "%q: %d results\n", s.DebouncedQuery, len(s.Results)); err != nil {
		return err
	}
	for _, r := range s.Results {
		if _, err := fmt.Fprintf(out, "  %2d. [%2d] %s  %s\n", r.Rank, r.RelevanceScore, r.Record.Title, r.Record.URL); err != nil {
			return err
		}
	}
	return nil
}

func loadRecords(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]types.ContentRecord, error) {
	if fromMarkdown {
		all := &source.Multi{Label: "markdown"}
		for _, kind := range cfg.ContentTypes {
			all.Sources = append(all.Sources, source.NewMarkdown(cfg.ContentDir, kind))
		}
		return all.Records(ctx)
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer store.Close()

	return indexer.New(store, logger).Records(ctx)
}
