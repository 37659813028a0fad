package privilege

import (
	"os"

	"golang.org/x/sys/unix"
)

// Ops is the set of filesystem calls a Transitioner makes.
type Ops interface {
	Lstat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	Chmod(path string, mode os.FileMode) error
	Lchown(path string, uid, gid int) error
}

// SystemOps performs the calls against the real filesystem.
type SystemOps struct{}

func (SystemOps) Lstat(path string) (os.FileInfo, error) { return os.Lstat(path) }

func (SystemOps) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }

func (SystemOps) Chmod(path string, mode os.FileMode) error {
	return unix.Chmod(path, uint32(mode.Perm()))
}

func (SystemOps) Lchown(path string, uid, gid int) error {
	return unix.Lchown(path, uid, gid)
}
