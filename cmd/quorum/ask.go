package quorum

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	root "github.com/soundprediction/quorum"
	"github.com/soundprediction/quorum/pkg/config"
	"github.com/soundprediction/quorum/pkg/telemetry"
	"github.com/soundprediction/quorum/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the document corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve the most relevant documents for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var (
	askK        int
	askAlpha    float64
	askMMR      bool
	askYears    bool
	askNoIntent bool
)

func init() {
	for _, cmd := range []*cobra.Command{askCmd, searchCmd} {
		cmd.Flags().IntVar(&askK, "k", 0, "Number of documents to retrieve (default from config)")
		cmd.Flags().Float64Var(&askAlpha, "alpha", -1, "Keyword weight, 0 (vector only) to 1 (keyword only)")
		cmd.Flags().BoolVar(&askMMR, "mmr", false, "Diversify results with maximal marginal relevance")
		cmd.Flags().BoolVar(&askYears, "year-filter", false, "Restrict results to years mentioned in the query")
		cmd.Flags().BoolVar(&askNoIntent, "no-intent", false, "Disable query intent priors")
		rootCmd.AddCommand(cmd)
	}
}

func buildOptions(cmd *cobra.Command) *types.RetrieveOptions {
	opts := &types.RetrieveOptions{
		K:             askK,
		UseMMR:        askMMR,
		UseYearFilter: askYears,
		SkipIntent:    askNoIntent,
	}
	if cmd.Flags().Changed("alpha") {
		alpha := askAlpha
		opts.Alpha = &alpha
	}
	return opts
}

func newCorpusClient() (*root.Client, *telemetry.ParquetHandler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, errLog := newLogger(cfg)
	client, err := root.NewClientFromConfig(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize quorum: %w", err)
	}
	return client, errLog, nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	client, errLog, err := newCorpusClient()
	if err != nil {
		return err
	}
	defer flushTelemetry(errLog)
	defer client.Close(cmd.Context())

	question := strings.Join(args, " ")
	opts := buildOptions(cmd)
	opts.ReturnAllChunks = true

	answer, err := client.Ask(cmd.Context(), question, opts)
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println("\nList of documents used:")
		for _, src := range answer.Sources {
			line := src.Document
			if src.Link != "" {
				line += " " + src.Link
			}
			fmt.Printf("%s  # %s\n", line, src.Snippet)
		}
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	client, errLog, err := newCorpusClient()
	if err != nil {
		return err
	}
	defer flushTelemetry(errLog)
	defer client.Close(cmd.Context())

	query := strings.Join(args, " ")
	chunks, err := client.Retrieve(cmd.Context(), query, buildOptions(cmd))
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Println("No matching documents.")
		return nil
	}

	fmt.Printf("Top %d results for: %s\n", len(chunks), query)
	for i, chunk := range chunks {
		snippet := strings.Join(strings.Fields(chunk.Text), " ")
		if len(snippet) > 120 {
			snippet = snippet[:120] + "..."
		}
		fmt.Printf("%d. %s: %s\n", i+1, chunk.Source, snippet)
	}
	return nil
}
