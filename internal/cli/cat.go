package cli

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/ravensync/vaultkeep/internal/render"
	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <uuid>",
	Short: "Print an entry's title, fields and history summary",
	Long: `Print the current revision of an entry by UUID, including its
fields and a summary of how many history revisions it carries.

Examples:
  vkeep cat 3fbe1e0e-...
  vkeep cat 3fbe1e0e-... --json
`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runCat),
}

var catJSON bool

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().BoolVar(&catJSON, "json", false, "Output as JSON")
}

type catOutput struct {
	UUID          string            `json:"uuid"`
	Title         string            `json:"title"`
	Fields        map[string]string `json:"fields"`
	Created       string            `json:"created"`
	LastModified  string            `json:"last_modified"`
	HistoryLength int               `json:"history_length"`
	Group         string            `json:"group"`
}

func runCat(app *appctx.App, cmd *cobra.Command, args []string) error {
	db, err := vkdb.Load(app.DB)
	if err != nil {
		return fmt.Errorf("failed to load vault: %w", err)
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid uuid %q: %w", args[0], err)
	}

	entry := db.FindEntryByUUID(id)
	if entry == nil {
		return fmt.Errorf("no entry with uuid %s", id)
	}

	group := ""
	if g := entry.Group(); g != nil {
		group = g.FullPath()
	}

	out := catOutput{
		UUID:          entry.UUID.String(),
		Title:         entry.Title,
		Fields:        entry.Fields,
		Created:       entry.TimeInfo.Created.Format("2006-01-02T15:04:05Z07:00"),
		LastModified:  entry.TimeInfo.LastModified.Format("2006-01-02T15:04:05Z07:00"),
		HistoryLength: len(entry.History),
		Group:         group,
	}

	if catJSON {
		renderer := render.NewRenderer(cmd.OutOrStdout(), render.Options{})
		return renderer.RenderJSON(out)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s]\n", out.Title, out.UUID)
	fmt.Fprintf(cmd.OutOrStdout(), "group:         %s\n", out.Group)
	fmt.Fprintf(cmd.OutOrStdout(), "created:       %s\n", out.Created)
	fmt.Fprintf(cmd.OutOrStdout(), "last modified: %s\n", out.LastModified)
	fmt.Fprintf(cmd.OutOrStdout(), "history:       %d revision(s)\n", out.HistoryLength)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, entry.Fields[k])
	}
	return nil
}
