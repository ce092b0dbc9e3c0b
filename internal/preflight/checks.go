package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// Access selects which permissions CheckDirectoryAccess verifies.
type Access int

const (
	// AccessRead requires an existing, listable directory.
	AccessRead Access = iota
	// AccessWrite requires the directory, or its nearest existing ancestor
	// when it has not been created yet, to be writable.
	AccessWrite
)

// CheckDirectoryAccess verifies that path is a directory with the requested access.
func CheckDirectoryAccess(name, path string, mode Access) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		if mode == AccessRead {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		parent, perr := nearestExisting(path)
		if perr != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, perr)}
		}
		if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}

	bits := uint32(unix.R_OK | unix.X_OK)
	okDetail := "read ok"
	if mode == AccessWrite {
		bits |= unix.W_OK
		okDetail = "read/write ok"
	}
	if err := unix.Access(path, bits); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckFreeSpace verifies that the file system holding path has at least
// need bytes available to unprivileged users.
func CheckFreeSpace(path string, need uint64) Result {
	const name = "Free space"

	probe, err := nearestExisting(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	var st unix.Statfs_t
	if err := unix.Statfs(probe, &st); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", probe, err)}
	}
	avail := st.Bavail * uint64(st.Bsize)
	if avail < need {
		return Result{Name: name, Detail: fmt.Sprintf("%s available, %s needed", humanize.IBytes(avail), humanize.IBytes(need))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s available, %s needed", humanize.IBytes(avail), humanize.IBytes(need))}
}

// SameFileSystem reports whether a and b (or their nearest existing
// ancestors) live on the same device.
func SameFileSystem(a, b string) bool {
	pa, err := nearestExisting(a)
	if err != nil {
		return false
	}
	pb, err := nearestExisting(b)
	if err != nil {
		return false
	}
	var sa, sb unix.Stat_t
	if unix.Stat(pa, &sa) != nil || unix.Stat(pb, &sb) != nil {
		return false
	}
	return sa.Dev == sb.Dev
}

func nearestExisting(path string) (string, error) {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing ancestor of %s", path)
		}
		current = parent
	}
}
