package cmd

import (
	"context"
	"fmt"

	"github.com/slinkshare/slink/internal/ui"
	"github.com/slinkshare/slink/internal/workflows"
	"github.com/spf13/cobra"
)

var addName string

func init() {
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "store under this file name (required when reading stdin)")
}

func resetAddCommandState() {
	addName = ""
}

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Store a file",
	Long: `Copies a file into the base directory under a new identifier and hands
it to the web server user. The file is reachable at its private URL
until shared:

  <base_url>/<identifier>/<filename>

Use '-' to read the content from stdin together with --name.

Examples:
  slink add report.pdf
  slink add notes.txt --name meeting-notes.txt
  pg_dump db | slink add - --name backup.sql`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting add command")
		Logger.Debugf("Args: %v, name=%q", args, addName)

		env, err := loadEnv()
		if err != nil {
			return reportError(err)
		}

		opts := workflows.AddOptions{Path: args[0], Name: addName}
		if args[0] == "-" {
			opts.Path = ""
			opts.Reader = inputReader()
		}

		spinner, cleanup := startSpinner("Storing file...")
		defer cleanup()

		result, err := workflows.Add(context.Background(), env, opts)
		if err != nil {
			Logger.Infof("Add failed: %v", err)
			spinner.FinalMSG = formatError(err)
			return &reportedError{err: err}
		}

		identity := result.Identity
		spinner.FinalMSG = fmt.Sprintf("%s Stored %s (%s)\n  Identifier: %s\n  URL:        %s",
			ui.Check(),
			ui.Highlight.Sprint(identity.Filename),
			formatSize(identity.Size),
			identity.Identifier,
			ui.URL.Sprint(result.PrivateURL))
		return nil
	},
}
