package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/slinkshare/slink/internal/ui"
	"github.com/slinkshare/slink/internal/utils"
	"github.com/slinkshare/slink/internal/workflows"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <file-spec>",
	Short: "Show a stored file and who it is shared with",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting show command")

		env, err := loadEnv()
		if err != nil {
			return reportError(err)
		}

		result, err := workflows.Show(context.Background(), env, args[0])
		if err != nil {
			return reportError(err)
		}

		identity := result.Identity
		fmt.Println("File:       " + ui.Highlight.Sprint(identity.Filename))
		fmt.Println("Identifier: " + identity.Identifier)
		fmt.Println("Digest:     " + ui.Muted.Sprint("blake3:"+identity.Digest))
		fmt.Println("Size:       " + formatSize(identity.Size))
		fmt.Println("Added:      " + utils.FormatTimestamp(identity.DateAdded, nil) + " " + ui.Muted.Sprint(humanize.Time(identity.DateAdded)))
		fmt.Println("URL:        " + ui.URL.Sprint(result.PrivateURL))

		if len(result.Grants) == 0 {
			fmt.Println()
			fmt.Println(ui.Arrow() + " Not shared yet; run " + ui.Code.Sprintf("slink share <recipient> %s", args[0]))
			return nil
		}

		fmt.Println()
		table := ui.NewTable(cmd.OutOrStdout(), "RECIPIENT", "STATUS", "SHARED", "REMOVED", "URL")
		for _, g := range result.Grants {
			status := ui.Success.Sprint("active")
			removed := "-"
			if !g.Active {
				status = ui.Muted.Sprint("revoked")
			}
			if g.DateRemoved != nil {
				removed = utils.FormatTimestamp(*g.DateRemoved, nil)
			}
			table.Row(g.Recipient, status, utils.FormatTimestamp(g.DateShared, nil), removed, g.URL)
		}
		return table.Flush()
	},
}

func formatSize(size int64) string {
	if size < 0 {
		return ui.Muted.Sprint("unknown")
	}
	return humanize.Bytes(uint64(size))
}
