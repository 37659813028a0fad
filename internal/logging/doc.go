// Package logger provides leveled logging for slink commands.
//
// The logger supports verbosity levels controlled by command-line flags.
// Output is formatted with coloured prefixes from fatih/color.
//
// # Verbosity Levels
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages
//
// Warnings and errors are always shown on stderr.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Locked down %s", path)
//
// The root command builds a logger in its PersistentPreRun and passes it
// to workflows and the file store. The zero value is silent except for
// warnings and errors.
package logger
