// Package errors provides typed error values for the slink application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Configuration errors: bad tunables or config file state (ErrConfiguration, ErrConfigNotFound)
//   - Principal errors: OS identity and ownership problems (ErrIdentityResolution, ErrPermissionChange)
//   - Input errors: operator-supplied values (ErrInvalidFilename, ErrInvalidRecipient, ErrSourceUnreadable)
//   - Lookup errors: file specifiers (ErrNotFound, ErrAmbiguousSpecifier)
//   - Storage errors: filesystem and ledger failures (ErrFilesystem, ErrLedger, ErrDuplicateIdentifier)
//
// # Usage
//
// Wrap errors with the path, identifier, or underlying OS error:
//
//	return fmt.Errorf("chown %s: %w: %w", path, errors.ErrPermissionChange, err)
//
// Handle errors in the CLI layer:
//
//	if errors.Is(err, serrors.ErrAmbiguousSpecifier) {
//	    // Show the candidate list and ask for an index
//	}
package errors
