package cmd

import (
	"context"
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/dustin/go-humanize"
	"github.com/slinkshare/slink/internal/ui"
	"github.com/slinkshare/slink/internal/utils"
	"github.com/slinkshare/slink/internal/workflows"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the configuration and ledger statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting info command")

		env, err := loadEnv()
		if err != nil {
			return reportError(err)
		}

		result, err := workflows.Info(context.Background(), env)
		if err != nil {
			return reportError(err)
		}

		if utils.IsStdoutTerminal() {
			figure.NewColorFigure("slink", "", "cyan", true).Print()
			fmt.Println()
		}

		cfg := result.Config
		fmt.Println("Version:      " + Version)
		fmt.Println("Config:       " + ui.Path.Sprint(result.ConfigPath))
		fmt.Println()
		fmt.Println("Base URL:     " + ui.Highlight.Sprint(cfg.BaseURL))
		fmt.Println("Base dir:     " + ui.Path.Sprint(cfg.BaseDir))
		fmt.Println("Ledger:       " + ui.Path.Sprint(cfg.DBPath))
		fmt.Println("Web server:   " + ui.Highlight.Sprint(result.Service.String()))
		fmt.Printf("Modes:        dir %s, file %s\n", cfg.DirMode, cfg.FileMode)
		fmt.Println("Hash secret:  " + ui.Muted.Sprint(utils.RedactSecret(cfg.HashSecret)))
		fmt.Printf("Links:        %d characters, %d bits\n", result.TokenLength, result.EntropyBits)
		fmt.Println()

		stats := result.Stats
		fmt.Println("Files:        " + humanize.Comma(int64(stats.Files)))
		fmt.Printf("Shares:       %s active, %s total\n", humanize.Comma(int64(stats.ActiveShares)), humanize.Comma(int64(stats.Shares)))
		if stats.Oldest != nil {
			fmt.Println("Oldest file:  " + utils.FormatTimestamp(*stats.Oldest, nil) + " " + ui.Muted.Sprint(humanize.Time(*stats.Oldest)))
		}
		return nil
	},
}
