// Package utils provides shared helpers for the slink commands.
//
// # Prompts
//
// Functions for interactive input, reading from an explicit reader so
// tests can drive them:
//   - Confirm: asks a [y/N] question, defaulting to no
//   - PromptWithDefault: asks for a value, offering a default
//
// # Terminal Utilities
//
// Functions for terminal detection:
//   - IsTerminal: checks whether stdin is a terminal
//   - IsStdoutTerminal: checks whether stdout is a terminal
//
// # String Utilities
//
// Functions for display formatting:
//   - FormatTimestamp: local-time rendering used in listings
//   - RedactSecret: hides all but the edges of the hash secret
//   - FormatPaths: renders a bulleted list of paths
package utils
