// Package ingestcmder provides the ingest command that indexes a file
// or a directory of documents.
package ingestcmder

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papyrusco/tome/cmd/tome/setup"
	"github.com/papyrusco/tome/pkg/engine"
	"github.com/papyrusco/tome/pkg/logger"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type ingestCommander struct {
	path      string
	chunkSize int
	overlap   int

	dataDir string
	store   string
	debug   bool
	logger  *zap.Logger
}

const ingestLongDesc string = `Index a file or every supported document in a directory.

Documents are split into overlapping, boundary-aware chunks, embedded,
and added to the configured vector store. Files that fail to load are
skipped; the rest of the directory is still indexed.

Example:
  tome ingest ./docs
  tome ingest report.md --chunk-size 800 --overlap 100
  tome ingest ./docs --store flat`

const ingestShortDesc string = "Index documents into the vector store"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.path = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.dataDir, _ = cmd.Flags().GetString("data-dir")
			cmder.store, _ = cmd.Flags().GetString("store")

			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&cmder.chunkSize, "chunk-size", 0, "Chunk size in characters (0 = configured default)")
	cmd.Flags().IntVar(&cmder.overlap, "overlap", 0, "Chunk overlap in characters (0 = configured default)")

	return cmd
}

func (c *ingestCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	runtime, err := setup.Build(ctx, setup.Opts{
		DataDir:       c.dataDir,
		StoreProvider: c.store,
		ChunkSize:     c.chunkSize,
		Overlap:       c.overlap,
	}, c.logger)
	if err != nil {
		return err
	}
	defer runtime.Close()

	result, err := runtime.Engine.Ingest(ctx, c.path)
	if err != nil {
		return err
	}

	if result.Status != engine.StatusSuccess {
		fmt.Printf("%s %s\n", errorStyle.Render("Ingestion failed:"), result.Message)
		return nil
	}

	printStats(result)
	return nil
}

func printStats(result *engine.IngestResult) {
	fmt.Printf("\n%s\n\n", headerStyle.Render("Documents indexed"))
	fmt.Printf("  %s %s\n", labelStyle.Render("Chunks:"), valueStyle.Render(fmt.Sprintf("%d", result.Stats.TotalChunks)))
	fmt.Printf("  %s %s\n", labelStyle.Render("Characters:"), valueStyle.Render(fmt.Sprintf("%d", result.Stats.TotalCharacters)))
	fmt.Printf("  %s %s\n", labelStyle.Render("Avg chunk size:"), valueStyle.Render(fmt.Sprintf("%d", result.Stats.AvgChunkSize)))
	fmt.Printf("  %s %s\n", labelStyle.Render("Documents:"), valueStyle.Render(fmt.Sprintf("%d", result.Stats.UniqueSources)))
	fmt.Printf("  %s %s\n", labelStyle.Render("Index records:"), valueStyle.Render(fmt.Sprintf("%d", result.Stats.VectorStore.RecordCount)))

	if len(result.Stats.Sources) > 0 {
		fmt.Printf("\n  %s\n", labelStyle.Render("Sources:"))
		for _, source := range result.Stats.Sources {
			fmt.Printf("    - %s\n", valueStyle.Render(filepath.Base(source)))
		}
	}
	fmt.Println()
}
