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

var treeCmd = &cobra.Command{
	Use:   "tree [PATH]",
	Short: "Display groups and entries in a tree structure",
	Long: `Display the group/entry hierarchy of the vault as a tree.

Examples:
  vkeep tree                   # Show tree from the root group
  vkeep tree Work/Email        # Show tree rooted at a nested group
  vkeep tree -L 2              # Limit depth to 2 levels
  vkeep tree --json            # Output as JSON
`,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runTree),
}

var (
	treeDepth     int
	treePorcelain bool
	treeJSON      bool
)

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().IntVarP(&treeDepth, "level", "L", 0, "Maximum depth to display (0 = unlimited)")
	treeCmd.Flags().BoolVar(&treePorcelain, "porcelain", false, "Machine-readable output")
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Output as JSON")
}

func runTree(app *appctx.App, cmd *cobra.Command, args []string) error {
	db, err := vkdb.Load(app.DB)
	if err != nil {
		return fmt.Errorf("failed to load vault: %w", err)
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	root, err := resolveGroupPath(db.RootGroup, path)
	if err != nil {
		return err
	}

	if treeJSON {
		renderer := render.NewRenderer(cmd.OutOrStdout(), render.Options{Porcelain: treePorcelain})
		return renderer.RenderJSON(buildTreeNode(root, treeDepth, 0))
	}

	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), ".")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	printGroupTree(cmd, root, "", treeDepth, 0, treePorcelain)
	return nil
}

// resolveGroupPath walks a "/"-separated group-name path from root.
func resolveGroupPath(root *vault.Group, path string) (*vault.Group, error) {
	if path == "" {
		return root, nil
	}
	current := root
	for _, segment := range strings.Split(path, "/") {
		var next *vault.Group
		for _, c := range current.Children {
			if c.Name == segment {
				next = c
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("group %q not found under %q", segment, current.FullPath())
		}
		current = next
	}
	return current, nil
}

type treeNode struct {
	Type     string      `json:"type"` // "group" or "entry"
	UUID     string      `json:"uuid"`
	Title    string      `json:"title"`
	Children []*treeNode `json:"children,omitempty"`
}

func buildTreeNode(g *vault.Group, maxDepth, depth int) *treeNode {
	node := &treeNode{Type: "group", UUID: g.UUID.String(), Title: g.Name}
	if maxDepth > 0 && depth >= maxDepth {
		return node
	}
	for _, e := range g.Entries {
		node.Children = append(node.Children, &treeNode{Type: "entry", UUID: e.UUID.String(), Title: e.Title})
	}
	for _, c := range g.Children {
		node.Children = append(node.Children, buildTreeNode(c, maxDepth, depth+1))
	}
	return node
}

func printGroupTree(cmd *cobra.Command, g *vault.Group, prefix string, maxDepth, depth int, porcelain bool) {
	if maxDepth > 0 && depth >= maxDepth {
		return
	}

	type child struct {
		label string
		group *vault.Group
	}
	var children []child
	for _, e := range g.Entries {
		children = append(children, child{label: fmt.Sprintf("%s [%s]", e.Title, shortUUID(e.UUID))})
	}
	for _, c := range g.Children {
		children = append(children, child{label: fmt.Sprintf("%s/ [%s]", c.Name, shortUUID(c.UUID)), group: c})
	}

	for i, ch := range children {
		isLast := i == len(children)-1
		connector := "├── "
		if isLast {
			connector = "└── "
		}
		if porcelain {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", prefix, ch.label)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s%s\n", prefix, connector, ch.label)
		}

		if ch.group != nil {
			newPrefix := prefix + "│   "
			if isLast {
				newPrefix = prefix + "    "
			}
			if porcelain {
				newPrefix = prefix + "  "
			}
			printGroupTree(cmd, ch.group, newPrefix, maxDepth, depth+1, porcelain)
		}
	}
}

func shortUUID(id vault.UUID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
