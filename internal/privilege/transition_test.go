package privilege

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	serrors "github.com/slinkshare/slink/internal/errors"
)

// selfService returns the current principal resolved by name, so tests can
// "hand over" a tree without elevated privileges.
func selfService(t *testing.T) Principal {
	t.Helper()
	cur := Current()
	if cur.User == "" || cur.Group == "" {
		t.Skip("current user or group has no name on this host")
	}
	p, err := ResolvePrincipal(cur.User, cur.Group)
	if err != nil {
		t.Fatalf("ResolvePrincipal(%s, %s) failed: %v", cur.User, cur.Group, err)
	}
	return p
}

func buildTree(t *testing.T, depth int) (string, []string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "entry")
	dir := root
	var all []string
	for i := 0; i < depth; i++ {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
		all = append(all, dir)
		file := filepath.Join(dir, "f.txt")
		if err := os.WriteFile(file, []byte("data"), 0644); err != nil { // #nosec G306
			t.Fatalf("Failed to write %s: %v", file, err)
		}
		all = append(all, file)
		dir = filepath.Join(dir, "d")
	}
	return root, all
}

func modeOf(t *testing.T, path string) os.FileMode {
	t.Helper()
	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("Failed to stat %s: %v", path, err)
	}
	return info.Mode().Perm()
}

func ownerOf(t *testing.T, path string) (int, int) {
	t.Helper()
	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("Failed to stat %s: %v", path, err)
	}
	st := info.Sys().(*syscall.Stat_t)
	return int(st.Uid), int(st.Gid)
}

func TestLockdownAppliesFinalModes(t *testing.T) {
	service := selfService(t)
	root, all := buildTree(t, 3)

	if err := Lockdown(root, DefaultModes, service); err != nil {
		t.Fatalf("Lockdown failed: %v", err)
	}

	for _, path := range all {
		info, _ := os.Lstat(path)
		want := DefaultModes.File
		if info.IsDir() {
			want = DefaultModes.Dir
		}
		if got := modeOf(t, path); got != want {
			t.Errorf("%s: expected mode %o, got %o", path, want, got)
		}
		uid, gid := ownerOf(t, path)
		if uid != service.UID || gid != service.GID {
			t.Errorf("%s: expected owner %d:%d, got %d:%d", path, service.UID, service.GID, uid, gid)
		}
	}
}

func TestLockdownThenReclaimRestoresOperatorAccess(t *testing.T) {
	service := selfService(t)
	for _, depth := range []int{1, 4, 64} {
		root, all := buildTree(t, depth)

		if err := Lockdown(root, Modes{Dir: 0o500, File: 0o400}, service); err != nil {
			t.Fatalf("depth %d: Lockdown failed: %v", depth, err)
		}
		if err := Reclaim(root); err != nil {
			t.Fatalf("depth %d: Reclaim failed: %v", depth, err)
		}

		cur := Current()
		for _, path := range all {
			if got := modeOf(t, path); got != 0o700 {
				t.Errorf("depth %d: %s: expected mode 700, got %o", depth, path, got)
			}
			uid, gid := ownerOf(t, path)
			if uid != cur.UID || gid != cur.GID {
				t.Errorf("depth %d: %s: expected owner %d:%d, got %d:%d", depth, path, cur.UID, cur.GID, uid, gid)
			}
		}

		if err := os.RemoveAll(root); err != nil {
			t.Errorf("depth %d: expected reclaimed tree to be removable, got %v", depth, err)
		}
	}
}

func TestLockdownSingleFile(t *testing.T) {
	service := selfService(t)
	path := filepath.Join(t.TempDir(), "lone.txt")
	if err := os.WriteFile(path, nil, 0666); err != nil { // #nosec G306
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := Lockdown(path, DefaultModes, service); err != nil {
		t.Fatalf("Lockdown failed: %v", err)
	}
	if got := modeOf(t, path); got != DefaultModes.File {
		t.Errorf("Expected mode %o, got %o", DefaultModes.File, got)
	}
}

// recordingOps delegates to the real filesystem and records mode and
// ownership changes in order.
type recordingOps struct {
	SystemOps
	calls    []string
	failPath string
}

func (r *recordingOps) Chmod(path string, mode os.FileMode) error {
	r.calls = append(r.calls, "chmod "+mode.Perm().String()+" "+path)
	return r.SystemOps.Chmod(path, mode)
}

func (r *recordingOps) Lchown(path string, uid, gid int) error {
	r.calls = append(r.calls, "chown "+path)
	if path == r.failPath {
		return syscall.EPERM
	}
	return r.SystemOps.Lchown(path, uid, gid)
}

func indexOf(calls []string, want string) int {
	for i, c := range calls {
		if c == want {
			return i
		}
	}
	return -1
}

func lastIndexWithSuffix(calls []string, suffix string) int {
	last := -1
	for i, c := range calls {
		if strings.HasSuffix(c, suffix) {
			last = i
		}
	}
	return last
}

func TestLockdownFinalizesAncestorsLast(t *testing.T) {
	service := selfService(t)
	root, _ := buildTree(t, 3)
	child := filepath.Join(root, "d")
	grandchild := filepath.Join(child, "d")

	ops := &recordingOps{}
	tr := &Transitioner{Ops: ops, Operator: Current()}
	if err := tr.Lockdown(root, DefaultModes, service); err != nil {
		t.Fatalf("Lockdown failed: %v", err)
	}

	operatorMode := os.FileMode(0o700).String()
	finalMode := DefaultModes.Dir.String()

	openRoot := indexOf(ops.calls, "chmod "+operatorMode+" "+root)
	openChild := indexOf(ops.calls, "chmod "+operatorMode+" "+child)
	finalRoot := indexOf(ops.calls, "chmod "+finalMode+" "+root)
	finalChild := indexOf(ops.calls, "chmod "+finalMode+" "+child)
	finalGrandchild := indexOf(ops.calls, "chmod "+finalMode+" "+grandchild)

	if openRoot != 0 {
		t.Errorf("Expected the root to be opened first, got call order %v", ops.calls)
	}
	if !(openRoot < openChild && openChild < finalGrandchild && finalGrandchild < finalChild && finalChild < finalRoot) {
		t.Errorf("Expected post-order finalization, got call order %v", ops.calls)
	}
	if last := lastIndexWithSuffix(ops.calls, " "+root); last != len(ops.calls)-1 {
		t.Errorf("Expected the root to be the last entry changed, got call order %v", ops.calls)
	}
}

func TestLockdownPermissionFailure(t *testing.T) {
	service := selfService(t)
	root, _ := buildTree(t, 2)
	failing := filepath.Join(root, "d", "f.txt")

	ops := &recordingOps{failPath: failing}
	tr := &Transitioner{Ops: ops, Operator: Current()}
	err := tr.Lockdown(root, DefaultModes, service)
	if !errors.Is(err, serrors.ErrPermissionChange) {
		t.Fatalf("Expected ErrPermissionChange, got %v", err)
	}
	if !errors.Is(err, syscall.EPERM) {
		t.Errorf("Expected the OS error to be wrapped, got %v", err)
	}
	if !strings.Contains(err.Error(), failing) {
		t.Errorf("Expected error to name %s, got %v", failing, err)
	}

	// The walk stops at the failure: the root never reaches its final mode.
	if got := modeOf(t, root); got != 0o700 {
		t.Errorf("Expected root left at 700, got %o", got)
	}
}

func TestLockdownMissingPath(t *testing.T) {
	service := selfService(t)
	err := Lockdown(filepath.Join(t.TempDir(), "missing"), DefaultModes, service)
	if !errors.Is(err, serrors.ErrFilesystem) {
		t.Errorf("Expected ErrFilesystem, got %v", err)
	}
}

func TestResolvePrincipalUnknown(t *testing.T) {
	cur := Current()

	_, err := ResolvePrincipal("slink-no-such-user-x9", cur.Group)
	if !errors.Is(err, serrors.ErrIdentityResolution) {
		t.Errorf("Expected ErrIdentityResolution for user, got %v", err)
	}

	if cur.User == "" {
		t.Skip("current user has no name on this host")
	}
	_, err = ResolvePrincipal(cur.User, "slink-no-such-group-x9")
	if !errors.Is(err, serrors.ErrIdentityResolution) {
		t.Errorf("Expected ErrIdentityResolution for group, got %v", err)
	}
}

func TestPrincipalString(t *testing.T) {
	p := Principal{UID: 33, GID: 33, User: "www-data", Group: "www-data"}
	if p.String() != "www-data:www-data" {
		t.Errorf("Expected www-data:www-data, got %s", p.String())
	}
	if (Principal{UID: 1, GID: 2}).String() != "1:2" {
		t.Errorf("Expected numeric fallback, got %s", Principal{UID: 1, GID: 2}.String())
	}
}
