package quorum

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Embed and store documents from a directory",
	Long: `Walk a directory tree, extract text from supported files, split it into
overlapping chunks, embed them, and upsert everything into the store.

Documents whose content is unchanged since the last run are skipped. A
sidecar file named <document>.meta.yaml overrides inferred metadata.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().Bool("ensure-indexes", true, "Create store indexes before ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	client, errLog, err := newCorpusClient()
	if err != nil {
		return err
	}
	defer flushTelemetry(errLog)
	defer client.Close(cmd.Context())

	if ensure, _ := cmd.Flags().GetBool("ensure-indexes"); ensure {
		if err := client.EnsureIndexes(cmd.Context()); err != nil {
			return fmt.Errorf("ensuring store indexes: %w", err)
		}
	}

	result, err := client.IngestDir(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d documents (%d chunks), skipped %d unchanged, %d oversized chunks\n",
		result.Documents, result.Chunks, result.SkippedUnchanged, result.SkippedOversize)
	return nil
}
