package cmd

import (
	"context"
	"fmt"

	"github.com/slinkshare/slink/internal/filestore"
	"github.com/slinkshare/slink/internal/ui"
	"github.com/slinkshare/slink/internal/utils"
	"github.com/slinkshare/slink/internal/workflows"
	"github.com/spf13/cobra"
)

var rmForce bool

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "skip confirmation prompt")
}

func resetRmCommandState() {
	rmForce = false
}

var rmCmd = &cobra.Command{
	Use:     "rm <file-spec>",
	Aliases: []string{"remove"},
	Short:   "Delete a stored file and every link to it",
	Long: `Deletes a stored file. Every recipient link pointing at it is removed
first, including links the ledger does not know about, and its grants are
marked revoked.

Use --force to skip the confirmation prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rm command")

		env, err := loadEnv()
		if err != nil {
			return reportError(err)
		}

		result, err := workflows.Remove(context.Background(), env, workflows.RemoveOptions{
			Spec:  args[0],
			Force: rmForce,
			Confirm: func(f filestore.FileIdentity) bool {
				name := f.Filename
				if name == "" {
					name = f.Identifier
				}
				ok, err := utils.Confirm(inputReader(), cmd.OutOrStdout(), "Remove "+name+"?")
				if err != nil {
					Logger.Errorf("Failed to read response: %v", err)
				}
				return ok
			},
		})
		if err != nil {
			Logger.Infof("Remove failed: %v", err)
			return reportError(err)
		}

		if result.Declined {
			fmt.Println("Aborted.")
			return nil
		}

		fmt.Printf("%s Removed %s\n", ui.Check(), ui.Highlight.Sprint(result.Identity.Filename))
		if result.LinksRemoved > 0 {
			fmt.Printf("  %d link(s) removed, %d active share(s) revoked\n", result.LinksRemoved, result.SharesRevoked)
		}
		return nil
	},
}
