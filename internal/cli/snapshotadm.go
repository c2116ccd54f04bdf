package cli

import (
	"fmt"

	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/ravensync/vaultkeep/internal/codec/vksnap"
	"github.com/spf13/cobra"
)

var exportAdmCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the vault to a canonical JSON snapshot file",
	Long: `Export writes the whole vault (groups, entries, history,
metadata, deletion log) as a canonical JSON snapshot, suitable for
diffing with 'vkeep diff' or feeding to another replica's
'vkeepadm merge'.`,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runExportAdm),
}

var exportOutputPath string

func init() {
	rootAdmCmd.AddCommand(exportAdmCmd)
	exportAdmCmd.Flags().StringVar(&exportOutputPath, "output", vksnap.DefaultOutputPath, "Snapshot output path")
}

func runExportAdm(app *appctx.App, cmd *cobra.Command, args []string) error {
	db, err := vkdb.Load(app.DB)
	if err != nil {
		return fmt.Errorf("failed to load vault: %w", err)
	}

	result, err := vksnap.Export(db, vksnap.ExportOptions{OutputPath: exportOutputPath, Canonical: true})
	if err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (rev %s, %d group(s), %d entrie(s))\n",
		result.OutputPath, result.SnapshotRev, result.GroupCount, result.EntryCount)
	return nil
}

var importAdmCmd = &cobra.Command{
	Use:   "import <snapshot-path>",
	Short: "Overwrite the vault from a canonical JSON snapshot file",
	Long: `Import replaces the entire contents of the configured
database with what is described by a snapshot file. Unlike merge, this
performs no reconciliation: it is a full overwrite, intended for
restoring a known-good snapshot rather than reconciling two replicas.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runImportAdm),
}

func init() {
	rootAdmCmd.AddCommand(importAdmCmd)
}

func runImportAdm(app *appctx.App, cmd *cobra.Command, args []string) error {
	db, result, err := vksnap.Import(args[0])
	if err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}

	if err := vkdb.Save(app.DB, db); err != nil {
		return fmt.Errorf("failed to save imported vault: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%d group(s), %d entrie(s))\n",
		result.InputPath, result.GroupCount, result.EntryCount)
	return nil
}

var verifyAdmCmd = &cobra.Command{
	Use:   "verify <snapshot-path>",
	Short: "Verify the vault matches a snapshot file byte-for-byte",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runVerifyAdm),
}

func init() {
	rootAdmCmd.AddCommand(verifyAdmCmd)
}

func runVerifyAdm(app *appctx.App, cmd *cobra.Command, args []string) error {
	db, err := vkdb.Load(app.DB)
	if err != nil {
		return fmt.Errorf("failed to load vault: %w", err)
	}

	result, err := vksnap.Verify(db, args[0])
	if err != nil {
		return fmt.Errorf("failed to verify snapshot: %w", err)
	}
	if result.Match {
		fmt.Fprintf(cmd.OutOrStdout(), "match (rev %s)\n", result.SnapshotRev)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "mismatch: %s\n", result.FirstMismatch)
	return fmt.Errorf("vault does not match snapshot %s", args[0])
}
