package cli

import (
	"fmt"
	"strings"

	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/ravensync/vaultkeep/internal/render"
	"github.com/ravensync/vaultkeep/internal/vault"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search entry titles by substring, case-insensitively",
	Long: `Search every entry in the vault for a case-insensitive title
substring match and print the matches with their group path.

Examples:
  vkeep find gmail
  vkeep find gmail --json
`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runFind),
}

var findJSON bool

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().BoolVar(&findJSON, "json", false, "Output as JSON")
}

type findResult struct {
	UUID  string `json:"uuid"`
	Title string `json:"title"`
	Group string `json:"group"`
}

func runFind(app *appctx.App, cmd *cobra.Command, args []string) error {
	db, err := vkdb.Load(app.DB)
	if err != nil {
		return fmt.Errorf("failed to load vault: %w", err)
	}

	needle := strings.ToLower(args[0])
	var matches []findResult

	var walk func(g *vault.Group)
	walk = func(g *vault.Group) {
		for _, e := range g.Entries {
			if strings.Contains(strings.ToLower(e.Title), needle) {
				matches = append(matches, findResult{
					UUID:  e.UUID.String(),
					Title: e.Title,
					Group: g.FullPath(),
				})
			}
		}
		for _, c := range g.Children {
			walk(c)
		}
	}
	walk(db.RootGroup)

	if findJSON {
		renderer := render.NewRenderer(cmd.OutOrStdout(), render.Options{})
		items := make([]interface{}, len(matches))
		for i, m := range matches {
			items[i] = m
		}
		return renderer.RenderNDJSON(items)
	}

	for _, m := range matches {
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s  [%s]\n", m.Group, m.Title, shortUUID2(m.UUID))
	}
	return nil
}
