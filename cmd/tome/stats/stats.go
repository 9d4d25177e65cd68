// Package statscmder provides the stats command for inspecting the
// vector store and embedding model behind the index.
package statscmder

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papyrusco/tome/cmd/tome/setup"
	"github.com/papyrusco/tome/pkg/logger"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

type statsCommander struct {
	dataDir string
	store   string
	debug   bool
	logger  *zap.Logger
}

const statsLongDesc string = `Show the state of the index: which vector store backend is active,
how many records it holds, the embedding dimension, and the embedding
model used to produce the vectors.

Example:
  tome stats
  tome stats --store flat`

const statsShortDesc string = "Show index and embedding statistics"

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

	return cmd
}

func (c *statsCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	runtime, err := setup.Build(ctx, setup.Opts{
		DataDir:       c.dataDir,
		StoreProvider: c.store,
	}, c.logger)
	if err != nil {
		return err
	}
	defer runtime.Close()

	stats, err := runtime.Engine.Stats(ctx)
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}

	fmt.Printf("\n%s\n\n", headerStyle.Render("Vector store"))
	printRow("Backend", stats.VectorStore.IndexType)
	printRow("Records", fmt.Sprintf("%d", stats.VectorStore.RecordCount))
	printRow("Dimension", fmt.Sprintf("%d", stats.VectorStore.Dimension))
	if stats.VectorStore.Collection != "" {
		printRow("Collection", stats.VectorStore.Collection)
	}
	if stats.VectorStore.PersistTarget != "" {
		printRow("Persisted at", stats.VectorStore.PersistTarget)
	}

	fmt.Printf("\n%s\n\n", headerStyle.Render("Embedding model"))
	printRow("Provider", stats.EmbeddingModel.Provider)
	printRow("Model", stats.EmbeddingModel.Model)
	printRow("Dimension", fmt.Sprintf("%d", stats.EmbeddingModel.Dimension))
	fmt.Println()

	return nil
}

func printRow(label, value string) {
	fmt.Printf("  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
}
