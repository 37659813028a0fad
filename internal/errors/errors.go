package errors

import "errors"

// Configuration errors indicate bad tunables or config file problems.
var (
	// ErrConfiguration indicates a configuration value is missing or out of range.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrConfigNotFound indicates no configuration file exists yet.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrConfigExists indicates a configuration file is already present.
	ErrConfigExists = errors.New("configuration file already exists")

	// ErrConfigPermissions indicates the configuration file is readable by group or others.
	ErrConfigPermissions = errors.New("configuration file permissions too loose")
)

// Principal errors indicate problems with OS users, groups and ownership.
var (
	// ErrIdentityResolution indicates a user or group name does not exist on the host.
	ErrIdentityResolution = errors.New("user or group not found")

	// ErrPermissionChange indicates a chown or chmod call was denied.
	ErrPermissionChange = errors.New("failed to change ownership or mode")
)

// Input errors indicate operator-supplied values that cannot be used.
var (
	// ErrInvalidFilename indicates a filename is empty or contains forbidden characters.
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrInvalidRecipient indicates an empty recipient label.
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrSourceUnreadable indicates the input file or stream could not be read.
	ErrSourceUnreadable = errors.New("source is unreadable")
)

// Lookup errors indicate a file specifier could not be resolved.
var (
	// ErrNotFound indicates an unknown identifier or no matching filename.
	ErrNotFound = errors.New("file not found")

	// ErrAmbiguousSpecifier indicates a name matches several stored files and no index was given.
	ErrAmbiguousSpecifier = errors.New("file name is ambiguous")
)

// Storage errors indicate filesystem or ledger failures.
var (
	// ErrFilesystem indicates an I/O failure during a walk, copy or link operation.
	ErrFilesystem = errors.New("filesystem operation failed")

	// ErrLedger indicates a failure in the share ledger.
	ErrLedger = errors.New("ledger operation failed")

	// ErrDuplicateIdentifier indicates the ledger already holds the generated identifier.
	ErrDuplicateIdentifier = errors.New("duplicate file identifier")
)
