// Package tomecmder
package tomecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	ingestcmder "github.com/papyrusco/tome/cmd/tome/ingest"
	querycmder "github.com/papyrusco/tome/cmd/tome/query"
	resetcmder "github.com/papyrusco/tome/cmd/tome/reset"
	statscmder "github.com/papyrusco/tome/cmd/tome/stats"
	watchcmder "github.com/papyrusco/tome/cmd/tome/watch"
	"github.com/papyrusco/tome/pkg/utils"
)

const tomeLongDesc string = `Tome turns directories of documents into a searchable dense-vector
index and answers questions with the most relevant passages.

Typical usage:
  tome ingest ./docs        Index every supported document in ./docs
  tome query "a question"   Retrieve the most relevant passages
  tome stats                Show index and model statistics`

const tomeShortDesc string = "Tome - document retrieval"

func NewTomeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tome",
		Short:   tomeShortDesc,
		Long:    tomeLongDesc,
		Version: fmt.Sprintf("%s (%s, built %s)", utils.Version, utils.Sha, utils.Buildtime),
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("data-dir", "", "Data directory (default ~/.tome)")
	cmd.PersistentFlags().String("store", "", "Vector store provider: sqlite, flat or qdrant")

	// Add subcommands
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(querycmder.NewQueryCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(resetcmder.NewResetCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())

	return cmd
}
