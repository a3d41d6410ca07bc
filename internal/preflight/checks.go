package preflight

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if res, ok := statDir(name, path); !ok {
		return res
	}
	if err := checkAccess(path, true); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSourceAccess verifies that the directory exists and can be listed and read.
func CheckSourceAccess(name, path string) Result {
	if res, ok := statDir(name, path); !ok {
		return res
	}
	if err := checkAccess(path, false); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

func statDir(name, path string) (Result, bool) {
	if path == "" {
		return Result{Name: name, Detail: "path not set"}, false
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}, false
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}, false
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}, false
	}
	return Result{}, true
}

// CheckDiskSpace compares free space on the volume holding path with
// threshold. A failing result is a warning. When free space cannot be
// determined the check passes with an explanatory detail.
func CheckDiskSpace(name, path string, threshold int64) (Result, uint64) {
	free, err := FreeSpace(path)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("unable to determine free space: %v", err)}, 0
	}
	detail := fmt.Sprintf("%s free on %s", humanize.IBytes(free), path)
	if threshold > 0 && free < uint64(threshold) {
		return Result{
			Name:    name,
			Warning: true,
			Detail:  fmt.Sprintf("%s (below %s)", detail, humanize.IBytes(uint64(threshold))),
		}, free
	}
	return Result{Name: name, Passed: true, Detail: detail}, free
}

// checkAccess opens path for listing and, when write is set, creates and
// removes a scratch file in it.
func checkAccess(path string, write bool) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	_, err = dir.Readdirnames(1)
	_ = dir.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if !write {
		return nil
	}
	scratch, err := os.CreateTemp(path, ".fonarchive-access-*")
	if err != nil {
		return err
	}
	name := scratch.Name()
	_ = scratch.Close()
	return os.Remove(name)
}
