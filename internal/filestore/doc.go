// Package filestore stores files under a web server's document root and
// hands out per-recipient capability links to them.
//
// Layout of the base directory:
//
//	<base>/<identifier>/<filename>   the stored file (a StoreEntry)
//	<base>/<token>                   relative symlink to <identifier>
//
// A Store ties together the link hash (linkhash), the ownership hand-over
// (privilege), the symlinks (capability) and the share ledger. It runs
// synchronously in the calling goroutine; concurrent invocations against
// the same base directory are not excluded.
package filestore
