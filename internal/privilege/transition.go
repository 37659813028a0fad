package privilege

import (
	"fmt"
	"os"
	"path/filepath"

	serrors "github.com/slinkshare/slink/internal/errors"
)

// Modes are the final permission bits for directories and plain files.
type Modes struct {
	Dir  os.FileMode
	File os.FileMode
}

// DefaultModes lets the service group traverse and read, nothing for others.
var DefaultModes = Modes{Dir: 0o750, File: 0o640}

const (
	operatorDirMode  os.FileMode = 0o700
	operatorFileMode os.FileMode = 0o600
	reclaimMode      os.FileMode = 0o700
)

// Transitioner applies ownership and mode changes to a tree.
type Transitioner struct {
	Ops      Ops
	Operator Principal
}

// New returns a Transitioner acting as the current process.
func New() *Transitioner {
	return &Transitioner{Ops: SystemOps{}, Operator: Current()}
}

// Lockdown hands the tree at root to the service principal with the given
// final modes. Directories are finished in post-order.
func Lockdown(root string, modes Modes, service Principal) error {
	return New().Lockdown(root, modes, service)
}

// Reclaim hands the tree at root back to the current process with mode 0700.
func Reclaim(root string) error {
	return New().Reclaim(root)
}

type frame struct {
	path     string
	children []string
	next     int
}

func (t *Transitioner) Lockdown(root string, modes Modes, service Principal) error {
	info, err := t.lstat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return t.lockdownLeaf(root, info, modes, service)
	}

	top, err := t.enterDir(root)
	if err != nil {
		return err
	}
	stack := []*frame{top}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next == len(top.children) {
			if err := t.apply(top.path, modes.Dir, service); err != nil {
				return err
			}
			stack = stack[:len(stack)-1]
			continue
		}

		child := top.children[top.next]
		top.next++

		info, err := t.lstat(child)
		if err != nil {
			return err
		}
		if info.IsDir() {
			f, err := t.enterDir(child)
			if err != nil {
				return err
			}
			stack = append(stack, f)
			continue
		}
		if err := t.lockdownLeaf(child, info, modes, service); err != nil {
			return err
		}
	}
	return nil
}

// enterDir gives the operating principal exclusive access to a directory
// and lists it.
func (t *Transitioner) enterDir(path string) (*frame, error) {
	if err := t.apply(path, operatorDirMode, t.Operator); err != nil {
		return nil, err
	}
	children, err := t.children(path)
	if err != nil {
		return nil, err
	}
	return &frame{path: path, children: children}, nil
}

func (t *Transitioner) lockdownLeaf(path string, info os.FileInfo, modes Modes, service Principal) error {
	if info.Mode()&os.ModeSymlink != 0 {
		// chmod would follow the link; only the link itself changes owner.
		return t.chown(path, service)
	}
	if err := t.apply(path, operatorFileMode, t.Operator); err != nil {
		return err
	}
	return t.apply(path, modes.File, service)
}

func (t *Transitioner) Reclaim(root string) error {
	stack := []string{root}
	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		info, err := t.lstat(path)
		if err != nil {
			return err
		}
		if err := t.chown(path, t.Operator); err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			continue
		}
		if err := t.chmod(path, reclaimMode); err != nil {
			return err
		}
		if !info.IsDir() {
			continue
		}

		children, err := t.children(path)
		if err != nil {
			return err
		}
		// Reverse so children are visited in directory order.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

func (t *Transitioner) apply(path string, mode os.FileMode, owner Principal) error {
	if err := t.chmod(path, mode); err != nil {
		return err
	}
	return t.chown(path, owner)
}

func (t *Transitioner) chmod(path string, mode os.FileMode) error {
	if err := t.Ops.Chmod(path, mode); err != nil {
		return fmt.Errorf("chmod %o %s: %w: %w", mode.Perm(), path, serrors.ErrPermissionChange, err)
	}
	return nil
}

func (t *Transitioner) chown(path string, owner Principal) error {
	if err := t.Ops.Lchown(path, owner.UID, owner.GID); err != nil {
		return fmt.Errorf("chown %s %s: %w: %w", owner, path, serrors.ErrPermissionChange, err)
	}
	return nil
}

func (t *Transitioner) lstat(path string) (os.FileInfo, error) {
	info, err := t.Ops.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w: %w", path, serrors.ErrFilesystem, err)
	}
	return info, nil
}

func (t *Transitioner) children(dir string) ([]string, error) {
	entries, err := t.Ops.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w: %w", dir, serrors.ErrFilesystem, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}
