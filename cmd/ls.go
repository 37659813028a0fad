package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/slinkshare/slink/internal/ui"
	"github.com/slinkshare/slink/internal/utils"
	"github.com/slinkshare/slink/internal/workflows"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored files, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting ls command")

		env, err := loadEnv()
		if err != nil {
			return reportError(err)
		}

		result, err := workflows.List(context.Background(), env)
		if err != nil {
			return reportError(err)
		}

		if len(result.Files) == 0 {
			fmt.Println(ui.Caution() + " No files stored")
			fmt.Println(ui.Arrow() + " Run " + ui.Code.Sprint("slink add <file>") + " to store one")
			return nil
		}

		table := ui.NewTable(cmd.OutOrStdout(), "FILENAME", "IDENTIFIER", "ADDED", "SIZE", "SHARES")
		for _, f := range result.Files {
			table.Row(f.Filename, f.Identifier, utils.FormatTimestamp(f.DateAdded, nil), formatSize(f.Size), strconv.Itoa(f.ActiveShares))
		}
		return table.Flush()
	},
}
