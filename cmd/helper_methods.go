package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"

	"github.com/slinkshare/slink/internal/configs"
	serrors "github.com/slinkshare/slink/internal/errors"
	"github.com/slinkshare/slink/internal/filestore"
	"github.com/slinkshare/slink/internal/ui"
	"github.com/slinkshare/slink/internal/utils"
	"github.com/slinkshare/slink/internal/workflows"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines; the cleanup function
// adds one before printing.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// loadEnv loads the configuration chosen by --config, $SLINK_CONFIG or the
// default location.
func loadEnv() (*workflows.Env, error) {
	path, err := configs.ResolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Loading configuration from %s", path)

	cfg, err := configs.Load(path)
	if err != nil {
		return nil, err
	}
	return &workflows.Env{Config: cfg, ConfigPath: path, Logger: Logger}, nil
}

// reportedError marks an error whose message has already been printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// reportError prints a user-facing message for err and returns it marked as
// reported, so the command still exits non-zero.
func reportError(err error) error {
	fmt.Print(ui.EnsureNewline(formatError(err)))
	return &reportedError{err: err}
}

// formatError turns a workflow error into a message with an optional hint.
func formatError(err error) string {
	var amb *filestore.AmbiguousError
	var b strings.Builder

	switch {
	case errors.As(err, &amb):
		b.WriteString(ui.Cross() + " Several files are named " + ui.Highlight.Sprint(amb.Name) + ":\n")
		for _, m := range amb.Matches {
			fmt.Fprintf(&b, "    %s/%d  %s  %s\n", amb.Name, m.Index, m.Identifier, ui.Muted.Sprint(utils.FormatTimestamp(m.DateAdded, nil)))
		}
		b.WriteString(ui.Arrow() + " Pick one with " + ui.Code.Sprintf("%s/<index>", amb.Name) + " or use its identifier")

	case errors.Is(err, serrors.ErrConfigNotFound):
		b.WriteString(ui.Cross() + " slink has not been configured\n")
		b.WriteString(ui.Arrow() + " Run " + ui.Code.Sprint("slink init") + " first")

	case errors.Is(err, serrors.ErrConfigPermissions):
		b.WriteString(ui.Cross() + " Configuration file can be read by other users\n")
		b.WriteString(ui.Arrow() + " It holds the hash secret; run " + ui.Code.Sprint("chmod 600") + " on it")

	case errors.Is(err, serrors.ErrConfigExists):
		b.WriteString(ui.Cross() + " A configuration file already exists\n")
		b.WriteString(ui.Arrow() + " Use " + ui.Code.Sprint("--force") + " to replace it")

	case errors.Is(err, serrors.ErrIdentityResolution):
		b.WriteString(ui.Cross() + " " + err.Error() + "\n")
		b.WriteString(ui.Arrow() + " Check web_user and web_group in the configuration")

	case errors.Is(err, serrors.ErrPermissionChange):
		b.WriteString(ui.Cross() + " Could not hand the file to the web server: " + err.Error() + "\n")
		b.WriteString(ui.Arrow() + " Changing ownership usually needs root; try " + ui.Code.Sprint("sudo slink"))

	case errors.Is(err, serrors.ErrNotFound):
		b.WriteString(ui.Cross() + " File not found: " + err.Error() + "\n")
		b.WriteString(ui.Arrow() + " Run " + ui.Code.Sprint("slink ls") + " to see stored files")

	case errors.Is(err, serrors.ErrLedger):
		b.WriteString(ui.Cross() + " Share ledger error: " + err.Error())

	default:
		b.WriteString(ui.Cross() + " " + err.Error())
	}
	return b.String()
}
