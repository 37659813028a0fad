// Package workflows provides high-level orchestration for slink commands.
//
// Workflows coordinate the configuration, the file store, the ledger and
// the audit log to implement complete user-facing features. Each workflow
// handles a single command's business logic, independent of CLI concerns
// like flag parsing, spinners and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Loads the configuration into an Env
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Opening the ledger and the file store
//   - Resolving file specifiers
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Init: writes a validated configuration and creates the ledger
//   - Add: stores a file and returns its private URL
//   - Share: grants a recipient a capability link
//   - Unshare: withdraws a recipient's link
//   - Remove: deletes a stored file and every link to it
//   - Show: describes one file and its grants
//   - List: lists stored files
//   - Info: reports configuration and ledger statistics
//   - Clean: removes capability links no active grant accounts for
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Share(ctx, env, opts)
//	if errors.Is(err, serrors.ErrAmbiguousSpecifier) {
//	    // List the candidates
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// It is passed to every ledger query.
package workflows
