package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ravensync/vaultkeep/internal/cli/appctx"
	"github.com/ravensync/vaultkeep/internal/codec/vkdb"
	"github.com/ravensync/vaultkeep/internal/render"
	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <uuid>",
	Short: "Show the TimeInfo of a group or entry",
	Long: `Print the five TimeInfo timestamps (created, last-modified,
last-accessed, location-changed, expiry) of a group or entry by UUID.

Examples:
  vkeep stat 3fbe1e0e-...
`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runStat),
}

var statJSON bool

func init() {
	rootCmd.AddCommand(statCmd)
	statCmd.Flags().BoolVar(&statJSON, "json", false, "Output as JSON")
}

type statOutput struct {
	UUID            string `json:"uuid"`
	Kind            string `json:"kind"`
	Created         string `json:"created"`
	LastModified    string `json:"last_modified"`
	LastAccessed    string `json:"last_accessed"`
	LocationChanged string `json:"location_changed"`
	ExpiryEnabled   bool   `json:"expiry_enabled"`
	Expiry          string `json:"expiry,omitempty"`
}

const timeFmt = "2006-01-02T15:04:05Z07:00"

func runStat(app *appctx.App, cmd *cobra.Command, args []string) error {
	db, err := vkdb.Load(app.DB)
	if err != nil {
		return fmt.Errorf("failed to load vault: %w", err)
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid uuid %q: %w", args[0], err)
	}

	var out statOutput
	if e := db.FindEntryByUUID(id); e != nil {
		out = statOutput{
			UUID: e.UUID.String(), Kind: "entry",
			Created: e.TimeInfo.Created.Format(timeFmt),
			LastModified: e.TimeInfo.LastModified.Format(timeFmt),
			LastAccessed: e.TimeInfo.LastAccessed.Format(timeFmt),
			LocationChanged: e.TimeInfo.LocationChanged.Format(timeFmt),
			ExpiryEnabled: e.TimeInfo.ExpiryEnabled,
		}
		if e.TimeInfo.ExpiryEnabled {
			out.Expiry = e.TimeInfo.ExpiryTime.Format(timeFmt)
		}
	} else if g := db.FindGroupByUUID(id); g != nil {
		out = statOutput{
			UUID: g.UUID.String(), Kind: "group",
			Created: g.TimeInfo.Created.Format(timeFmt),
			LastModified: g.TimeInfo.LastModified.Format(timeFmt),
			LastAccessed: g.TimeInfo.LastAccessed.Format(timeFmt),
			LocationChanged: g.TimeInfo.LocationChanged.Format(timeFmt),
			ExpiryEnabled: g.TimeInfo.ExpiryEnabled,
		}
		if g.TimeInfo.ExpiryEnabled {
			out.Expiry = g.TimeInfo.ExpiryTime.Format(timeFmt)
		}
	} else {
		return fmt.Errorf("no group or entry with uuid %s", id)
	}

	if statJSON {
		renderer := render.NewRenderer(cmd.OutOrStdout(), render.Options{})
		return renderer.RenderJSON(out)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "uuid:             %s (%s)\n", out.UUID, out.Kind)
	fmt.Fprintf(cmd.OutOrStdout(), "created:          %s\n", out.Created)
	fmt.Fprintf(cmd.OutOrStdout(), "last modified:    %s\n", out.LastModified)
	fmt.Fprintf(cmd.OutOrStdout(), "last accessed:    %s\n", out.LastAccessed)
	fmt.Fprintf(cmd.OutOrStdout(), "location changed: %s\n", out.LocationChanged)
	if out.ExpiryEnabled {
		fmt.Fprintf(cmd.OutOrStdout(), "expires:          %s\n", out.Expiry)
	}
	return nil
}
