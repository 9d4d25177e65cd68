// Package querycmder provides the query command for retrieving
// relevant passages, with an optional interactive mode.
package querycmder

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
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	rankStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type queryCommander struct {
	question    string
	topK        int
	useLLM      bool
	interactive bool

	dataDir string
	store   string
	debug   bool
	logger  *zap.Logger
}

const queryLongDesc string = `Ask a question against the indexed documents.

The question is embedded once and the most relevant passages are
retrieved from the vector store, ranked by relevance. Without a
generation step configured, the answer lists the top passages verbatim.

Example:
  tome query "how is the retention policy configured"
  tome query "backup schedule" --top 10
  tome query --interactive`

const queryShortDesc string = "Ask a question against the index"

func NewQueryCmd() *cobra.Command {
	cmder := &queryCommander{}

	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: queryShortDesc,
		Long:  queryLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cmder.question = args[0]
			}
			if cmder.question == "" && !cmder.interactive {
				return fmt.Errorf("provide a question or use --interactive")
			}

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

	cmd.Flags().IntVarP(&cmder.topK, "top", "k", 0, "Number of passages to retrieve (0 = configured default)")
	cmd.Flags().BoolVar(&cmder.useLLM, "llm", false, "Answer with the generation collaborator (unimplemented stub)")
	cmd.Flags().BoolVarP(&cmder.interactive, "interactive", "i", false, "Interactive question loop")

	return cmd
}

func (c *queryCommander) run(ctx context.Context) error {
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

	topK := c.topK
	if topK <= 0 {
		topK = runtime.Config.Query.TopK
	}

	if c.interactive {
		return c.runInteractive(ctx, runtime, topK)
	}

	return c.ask(ctx, runtime, c.question, topK)
}

func (c *queryCommander) runInteractive(ctx context.Context, runtime *setup.Runtime, topK int) error {
	fmt.Printf("\n%s\n", headerStyle.Render("Tome - interactive mode"))
	fmt.Println(dimStyle.Render("Ask questions about the indexed documents. Type 'quit' to exit."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("\n%s ", headerStyle.Render("Question:"))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "quit" || question == "exit" {
			return nil
		}

		if err := c.ask(ctx, runtime, question, topK); err != nil {
			fmt.Printf("%s %v\n", dimStyle.Render("error:"), err)
		}
	}
}

func (c *queryCommander) ask(ctx context.Context, runtime *setup.Runtime, question string, topK int) error {
	answer, err := runtime.Engine.AnswerQuestion(ctx, question, topK, c.useLLM)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n\n%s\n", headerStyle.Render("Answer"), textStyle.Render(answer.Answer))

	if len(answer.Sources) > 0 {
		fmt.Printf("\n%s\n\n", headerStyle.Render(fmt.Sprintf("Sources (%d)", len(answer.Sources))))
		for i, source := range answer.Sources {
			filename := "unknown"
			if name, ok := source.Metadata["filename"].(string); ok {
				filename = name
			}
			fmt.Printf("  %s  %s  %s\n",
				rankStyle.Render(fmt.Sprintf("#%d", i+1)),
				scoreStyle.Render(fmt.Sprintf("score: %.4f", source.Score)),
				sourceStyle.Render(filename),
			)
		}
	}

	return nil
}
