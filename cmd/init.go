package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/slinkshare/slink/internal/configs"
	"github.com/slinkshare/slink/internal/linkhash"
	"github.com/slinkshare/slink/internal/ui"
	"github.com/slinkshare/slink/internal/utils"
	"github.com/slinkshare/slink/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	initBaseURL   string
	initBaseDir   string
	initDBPath    string
	initWebUser   string
	initWebGroup  string
	initHashBytes int
	initForce     bool
	initYes       bool
)

func init() {
	initCmd.Flags().StringVar(&initBaseURL, "base-url", "", "URL prefix the base directory is served under")
	initCmd.Flags().StringVar(&initBaseDir, "base-dir", "", "web server directory that holds stored files and links")
	initCmd.Flags().StringVar(&initDBPath, "db-path", "", "share ledger location")
	initCmd.Flags().StringVar(&initWebUser, "web-user", "", "user the web server runs as")
	initCmd.Flags().StringVar(&initWebGroup, "web-group", "", "group the web server runs as")
	initCmd.Flags().IntVar(&initHashBytes, "hash-bytes", 0, "bytes of hash kept in each link (2-32)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "replace an existing configuration")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "accept defaults without prompting")
}

func resetInitCommandState() {
	initBaseURL = ""
	initBaseDir = ""
	initDBPath = ""
	initWebUser = ""
	initWebGroup = ""
	initHashBytes = 0
	initForce = false
	initYes = false
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the slink configuration",
	Long: `Creates the configuration file and the share ledger.

The command prompts for:
  - Base URL (where the base directory is served)
  - Base directory (web server document root)
  - Web server user and group (owners of stored files)
  - Hash bytes (length of each link; 7 bytes gives 10 characters)

A random hash secret is generated. The configuration is written with mode
0600 because anyone holding the secret can compute every link.

Values given as flags are not prompted for. With --yes, or when stdin is
not a terminal, defaults are used for everything else.

Examples:
  # Interactive setup
  slink init

  # Non-interactive setup
  slink init --base-url https://files.example.com --base-dir /srv/files --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting init command")

		path, err := configs.ResolveConfigPath(configPath)
		if err != nil {
			return reportError(err)
		}
		Logger.Debugf("Configuration path: %s", path)

		cfg, err := configs.Default()
		if err != nil {
			return reportError(err)
		}
		applyInitFlags(cmd, cfg)

		if !initYes && utils.IsTerminal() {
			if err := promptForConfig(cmd, cfg); err != nil {
				return reportError(err)
			}
		}

		result, err := workflows.Init(context.Background(), workflows.InitOptions{
			ConfigPath: path,
			Config:     cfg,
			Force:      initForce,
		})
		if err != nil {
			Logger.Infof("Init failed: %v", err)
			return reportError(err)
		}

		fmt.Println(ui.Check() + " Configuration saved")
		fmt.Print("Files written:" + utils.FormatPaths([]string{result.ConfigPath, result.LedgerPath}))
		fmt.Println()
		fmt.Println("Your settings:")
		fmt.Println("  Base URL:    " + ui.Highlight.Sprint(cfg.BaseURL))
		fmt.Println("  Base dir:    " + ui.Path.Sprint(cfg.BaseDir))
		fmt.Println("  Web server:  " + ui.Highlight.Sprint(result.Service.String()))
		fmt.Println("  Hash secret: " + ui.Muted.Sprint(utils.RedactSecret(cfg.HashSecret)))
		fmt.Println()
		fmt.Println(ui.Arrow() + " Store a file with " + ui.Code.Sprint("slink add <file>"))
		return nil
	},
}

func applyInitFlags(cmd *cobra.Command, cfg *configs.Config) {
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = initBaseURL
	}
	if flags.Changed("base-dir") {
		cfg.BaseDir = initBaseDir
	}
	if flags.Changed("db-path") {
		cfg.DBPath = initDBPath
	}
	if flags.Changed("web-user") {
		cfg.WebUser = initWebUser
	}
	if flags.Changed("web-group") {
		cfg.WebGroup = initWebGroup
	}
	if flags.Changed("hash-bytes") {
		cfg.HashBytes = initHashBytes
	}
}

// promptForConfig asks for every value not given as a flag.
func promptForConfig(cmd *cobra.Command, cfg *configs.Config) error {
	r := inputReader()
	out := cmd.OutOrStdout()
	flags := cmd.Flags()

	prompts := []struct {
		flag  string
		label string
		value *string
	}{
		{"base-url", "Base URL", &cfg.BaseURL},
		{"base-dir", "Base directory", &cfg.BaseDir},
		{"db-path", "Ledger path", &cfg.DBPath},
		{"web-user", "Web server user", &cfg.WebUser},
		{"web-group", "Web server group", &cfg.WebGroup},
	}
	for _, p := range prompts {
		if flags.Changed(p.flag) {
			continue
		}
		v, err := utils.PromptWithDefault(r, out, p.label, *p.value)
		if err != nil {
			return err
		}
		*p.value = v
	}

	if flags.Changed("hash-bytes") {
		return nil
	}
	for {
		v, err := utils.PromptWithDefault(r, out, fmt.Sprintf("Hash bytes (%d-%d)", linkhash.MinLength, linkhash.MaxLength), strconv.Itoa(cfg.HashBytes))
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(v)
		if err == nil && linkhash.ValidateLength(n) == nil {
			cfg.HashBytes = n
			return nil
		}
		fmt.Fprintln(out, ui.Cross()+" Enter a number between "+strconv.Itoa(linkhash.MinLength)+" and "+strconv.Itoa(linkhash.MaxLength))
	}
}
