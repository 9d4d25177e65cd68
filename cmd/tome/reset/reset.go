// Package resetcmder provides the reset command for wiping the index.
package resetcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papyrusco/tome/cmd/tome/setup"
	"github.com/papyrusco/tome/pkg/logger"
)

var (
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type resetCommander struct {
	force bool

	dataDir string
	store   string
	debug   bool
	logger  *zap.Logger
}

const resetLongDesc string = `Delete every record from the active vector store. The store itself
stays usable afterwards; re-ingest to rebuild the index.

Example:
  tome reset
  tome reset --force`

const resetShortDesc string = "Delete all indexed records"

func NewResetCmd() *cobra.Command {
	cmder := &resetCommander{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: resetShortDesc,
		Long:  resetLongDesc,
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

	cmd.Flags().BoolVarP(&cmder.force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

func (c *resetCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	if !c.force && !confirm() {
		fmt.Println(dimStyle.Render("Aborted."))
		return nil
	}

	runtime, err := setup.Build(ctx, setup.Opts{
		DataDir:       c.dataDir,
		StoreProvider: c.store,
	}, c.logger)
	if err != nil {
		return err
	}
	defer runtime.Close()

	if err := runtime.Engine.Reset(ctx); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}

	fmt.Printf("%s %s\n", doneStyle.Render("✓"), "Index cleared.")
	return nil
}

func confirm() bool {
	fmt.Printf("%s ", warnStyle.Render("This deletes every indexed record. Continue? [y/N]"))

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
