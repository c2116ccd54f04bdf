package cli

import (
	"fmt"

	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/ravensync/vaultkeep/internal/render"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List the immediate children of a group",
	Long: `List the child groups and entries directly under a group,
without recursing (see 'vkeep tree' for the recursive view).

Examples:
  vkeep ls                 # List root group contents
  vkeep ls Work/Email       # List a nested group's contents
  vkeep ls --json           # Output as JSON
`,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runLs),
}

var lsJSON bool

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Output as JSON")
}

type lsEntry struct {
	Type  string `json:"type"`
	UUID  string `json:"uuid"`
	Title string `json:"title"`
}

func runLs(app *appctx.App, cmd *cobra.Command, args []string) error {
	db, err := vkdb.Load(app.DB)
	if err != nil {
		return fmt.Errorf("failed to load vault: %w", err)
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	group, err := resolveGroupPath(db.RootGroup, path)
	if err != nil {
		return err
	}

	var out []lsEntry
	for _, c := range group.Children {
		out = append(out, lsEntry{Type: "group", UUID: c.UUID.String(), Title: c.Name})
	}
	for _, e := range group.Entries {
		out = append(out, lsEntry{Type: "entry", UUID: e.UUID.String(), Title: e.Title})
	}

	if lsJSON {
		renderer := render.NewRenderer(cmd.OutOrStdout(), render.Options{})
		items := make([]interface{}, len(out))
		for i, o := range out {
			items[i] = o
		}
		return renderer.RenderNDJSON(items)
	}

	for _, o := range out {
		suffix := ""
		if o.Type == "group" {
			suffix = "/"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s  [%s]\n", o.Title, suffix, shortUUID2(o.UUID))
	}
	return nil
}

func shortUUID2(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
