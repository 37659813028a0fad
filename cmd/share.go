package cmd

import (
	"context"
	"fmt"

	"github.com/slinkshare/slink/internal/ui"
	"github.com/slinkshare/slink/internal/workflows"
	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share <recipient> <file-spec>",
	Short: "Give a recipient a link to a file",
	Long: `Creates a link for one recipient and prints its URL. The recipient is any
label you choose; sharing the same file with the same recipient again prints
the same URL.

A file-spec is an identifier, a file name, or name/<index> when several
stored files share a name.

Examples:
  slink share bob report.pdf
  slink share "alice (laptop)" report.pdf/2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting share command")
		recipient, spec := args[0], args[1]
		Logger.Debugf("Recipient: %q, spec: %q", recipient, spec)

		env, err := loadEnv()
		if err != nil {
			return reportError(err)
		}

		result, err := workflows.Share(context.Background(), env, workflows.ShareOptions{Recipient: recipient, Spec: spec})
		if err != nil {
			Logger.Infof("Share failed: %v", err)
			return reportError(err)
		}

		fmt.Printf("%s Shared %s with %s:\n", ui.Check(), ui.Highlight.Sprint(result.Identity.Filename), ui.Highlight.Sprint(result.Recipient))
		fmt.Println(ui.URL.Sprint(result.URL))
		return nil
	},
}

var unshareCmd = &cobra.Command{
	Use:   "unshare <recipient> <file-spec>",
	Short: "Withdraw a recipient's link",
	Long: `Removes the link previously created for a recipient. Other recipients'
links keep working. The grant stays in the ledger as history.

Examples:
  slink unshare bob report.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting unshare command")
		recipient, spec := args[0], args[1]
		Logger.Debugf("Recipient: %q, spec: %q", recipient, spec)

		env, err := loadEnv()
		if err != nil {
			return reportError(err)
		}

		result, err := workflows.Unshare(context.Background(), env, workflows.ShareOptions{Recipient: recipient, Spec: spec})
		if err != nil {
			Logger.Infof("Unshare failed: %v", err)
			return reportError(err)
		}

		if !result.WasActive {
			fmt.Printf("%s %s was not shared with %s\n", ui.Caution(), ui.Highlight.Sprint(result.Identity.Filename), ui.Highlight.Sprint(result.Recipient))
			return nil
		}
		fmt.Printf("%s Unshared %s from %s\n", ui.Check(), ui.Highlight.Sprint(result.Identity.Filename), ui.Highlight.Sprint(result.Recipient))
		return nil
	},
}
