package cmd

import (
	"bufio"
	"io"
	"os"

	logger "github.com/slinkshare/slink/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is set at build time with -ldflags "-X github.com/slinkshare/slink/cmd.Version=...".
var Version = "dev"

var (
	verbose    bool
	debug      bool
	configPath string
	Logger     logger.Logger

	input *bufio.Reader

	RootCmd = &cobra.Command{
		Use:   "slink",
		Short: "slink - share files from a web server through per-recipient links",
		Long: `slink stores files under a web server's document root and hands out
an unguessable link per recipient. Unsharing removes that recipient's link
without affecting anyone else's.

Layout of the base directory:
  <base_dir>/<identifier>/<filename>   the stored file
  <base_dir>/<token>                   link for one recipient

Run 'slink init' to create a configuration, then:
  slink add report.pdf
  slink share bob report.pdf
  slink unshare bob report.pdf`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default $XDG_CONFIG_HOME/slink/slink.conf, or $SLINK_CONFIG)")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(addCmd)
	RootCmd.AddCommand(shareCmd)
	RootCmd.AddCommand(unshareCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(lsCmd)
	RootCmd.AddCommand(rmCmd)
	RootCmd.AddCommand(infoCmd)
	RootCmd.AddCommand(cleanCmd)
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// inputReader returns the shared reader over stdin used by prompts and by
// 'slink add -'.
func inputReader() *bufio.Reader {
	if input == nil {
		input = bufio.NewReader(os.Stdin)
	}
	return input
}

// Helper functions for testing

// SetInput replaces stdin for prompts and streamed adds.
func SetInput(r io.Reader) {
	input = bufio.NewReader(r)
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	input = nil
	resetInitCommandState()
	resetAddCommandState()
	resetRmCommandState()
	resetCleanCommandState()
	resetFlags(RootCmd)
}

// resetFlags restores every flag of c and its subcommands to its default and
// clears its changed state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
