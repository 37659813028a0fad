// Package privilege moves a directory tree between the operating principal
// (the user running slink) and the service principal (the user and group
// the web server runs as).
//
// # Lockdown
//
// Lockdown walks the tree depth-first. Every directory is first handed to
// the operating principal with mode 0700 so its children can be reached,
// and only after all of its children are done does it receive its final
// mode and service ownership. Ancestors are therefore finished last, and
// no ancestor is restrictive while a descendant still needs the operating
// principal's access.
//
// # Reclaim
//
// Reclaim is the reverse step run before deletion: every entry is handed
// back to the operating principal with mode 0700.
//
// Neither operation is transactional. A failed chown or chmod aborts the
// walk and leaves the tree in whatever state it reached; the returned error
// names the path and wraps the OS error.
package privilege
