package cli

import (
	"fmt"
	"strings"

	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/ravensync/vaultkeep/internal/codec/vksnap"
	"github.com/ravensync/vaultkeep/internal/vault"
	"github.com/ravensync/vaultkeep/internal/vault/merge"
	"github.com/spf13/cobra"
)

var mergeAdmCmd = &cobra.Command{
	Use:   "merge <source-snapshot.json>",
	Short: "Three-way-free merge a source snapshot into the target vault",
	Long: `Merge reconciles a source replica (given as a canonical JSON
snapshot exported with 'vkeepadm export') into the target database
configured via --db, using only per-item timestamps: no common
ancestor is required or consulted.

Without --commit (the default) the merge runs against a disposable clone
of the target and nothing is written back; pass --commit to persist
the result. --mode overrides every group's own merge-mode policy for
the duration of this merge, which controls whether the source's
tombstones are allowed to delete items still live in the target.

Examples:
  vkeepadm merge other.json
  vkeepadm merge other.json --mode synchronize --commit
`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runMergeAdm),
}

var (
	mergeCommit bool
	mergeMode   string
)

func init() {
	rootAdmCmd.AddCommand(mergeAdmCmd)
	mergeAdmCmd.Flags().BoolVar(&mergeCommit, "commit", false, "Write the merged result back to the target database")
	mergeAdmCmd.Flags().StringVar(&mergeMode, "mode", "", "Override every group's merge mode (default|keep-local|keep-remote|synchronize|duplicate)")
}

func parseMergeModeFlag(s string) (vault.MergeMode, error) {
	switch strings.ToLower(s) {
	case "default":
		return vault.MergeModeDefault, nil
	case "keep-local":
		return vault.MergeModeKeepLocal, nil
	case "keep-remote":
		return vault.MergeModeKeepRemote, nil
	case "synchronize", "sync":
		return vault.MergeModeSynchronize, nil
	case "duplicate":
		return vault.MergeModeDuplicate, nil
	default:
		return vault.MergeModeDefault, fmt.Errorf("unknown merge mode %q", s)
	}
}

func runMergeAdm(app *appctx.App, cmd *cobra.Command, args []string) error {
	sourceDB, _, err := vksnap.Import(args[0])
	if err != nil {
		return fmt.Errorf("failed to load source snapshot: %w", err)
	}

	targetDB, err := vkdb.Load(app.DB)
	if err != nil {
		return fmt.Errorf("failed to load target vault: %w", err)
	}

	workingTarget := targetDB
	if !mergeCommit {
		workingTarget = targetDB.Clone()
	}

	m := merge.New(sourceDB, workingTarget)
	if mergeMode != "" {
		mode, err := parseMergeModeFlag(mergeMode)
		if err != nil {
			return err
		}
		m.SetForcedMergeMode(mode)
	}

	changes := m.Merge()

	for _, w := range m.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	for _, c := range changes {
		fmt.Fprintln(cmd.OutOrStdout(), c.String())
	}
	if len(changes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no changes")
	}

	if !mergeCommit {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d change(s) previewed, target left untouched (pass --commit to write)\n", len(changes))
		return nil
	}

	if err := vkdb.Save(app.DB, workingTarget); err != nil {
		return fmt.Errorf("failed to save merged vault: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d change(s) committed to %s\n", len(changes), app.DB.Path())
	return nil
}
