package cmd

import (
	"context"
	"fmt"

	"github.com/slinkshare/slink/internal/ui"
	"github.com/slinkshare/slink/internal/utils"
	"github.com/slinkshare/slink/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	cleanDryRun bool
	cleanForce  bool
)

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "show what would be removed without making changes")
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "skip confirmation prompt")
}

func resetCleanCommandState() {
	cleanDryRun = false
	cleanForce = false
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove links no active share accounts for",
	Long: `Removes links in the base directory that are either dangling or carry a
token the ledger does not list as an active share of their target.

These are left behind when a remove or unshare is interrupted.

Use --dry-run to preview what would be removed.
Use --force to skip the confirmation prompt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting clean command")
		Logger.Debugf("Flags: dry-run=%t, force=%t", cleanDryRun, cleanForce)

		env, err := loadEnv()
		if err != nil {
			return reportError(err)
		}

		preview, err := workflows.Clean(context.Background(), env, workflows.CleanOptions{DryRun: true})
		if err != nil {
			return reportError(err)
		}

		if len(preview.Stray) == 0 {
			fmt.Println(ui.Check() + " No stray links found. Nothing to clean.")
			return nil
		}

		fmt.Printf("Found %d stray link(s):\n", len(preview.Stray))
		for _, link := range preview.Stray {
			fmt.Printf("  %s -> %s %s\n", link.Token, ui.Path.Sprint(link.Target), ui.Muted.Sprint(link.Reason))
		}
		fmt.Println()

		if cleanDryRun {
			fmt.Println("Dry run - no links were removed.")
			return nil
		}

		if !cleanForce {
			ok, err := utils.Confirm(inputReader(), cmd.OutOrStdout(), "Remove these links?")
			if err != nil {
				Logger.Errorf("Failed to read response: %v", err)
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}

		result, err := workflows.Clean(context.Background(), env, workflows.CleanOptions{Force: true})
		if err != nil {
			return reportError(err)
		}

		fmt.Printf("%s Removed %d stray link(s)\n", ui.Check(), result.RemovedCount)
		return nil
	},
}
