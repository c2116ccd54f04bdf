package cli

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/ravensync/vaultkeep/internal/codec/vksnap"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <snapshot-A> <snapshot-B>",
	Short: "Show a unified diff between two vault snapshots",
	Long: `Render a unified diff between two canonical JSON snapshot exports
of a vault, such as a pre-merge and post-merge export of the same
database, or a source replica's export compared against the target's.

Examples:
  vkeepadm export --output before.json
  vkeepadm merge other.json --commit
  vkeepadm export --output after.json
  vkeep diff before.json after.json
`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

var diffUnified int

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().IntVar(&diffUnified, "unified", 3, "Lines of unified context")
}

func runDiff(cmd *cobra.Command, args []string) error {
	_, dataA, err := vksnap.LoadSnapshot(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	_, dataB, err := vksnap.LoadSnapshot(args[1])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[1], err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(dataA)),
		B:        difflib.SplitLines(string(dataB)),
		FromFile: args[0],
		ToFile:   args[1],
		Context:  diffUnified,
	}
	diffText, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Errorf("failed to render diff: %w", err)
	}

	if diffText == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "no differences")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), diffText)
	return nil
}
