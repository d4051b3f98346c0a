package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/battwarn/internal/errors"
)

const (
	pidFile = "battwarn.pid"
)

// Dir is where the PID file lives. It defaults to $XDG_RUNTIME_DIR, falling
// back to the system temp directory.
var Dir = defaultDir()

func defaultDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// Write writes the current process ID to a PID file. It fails with
// ErrAlreadyRunning when the file names a live process.
func Write() error {
	errFactory := errors.New()
	path := filepath.Join(Dir, pidFile)

	if bytes, err := os.ReadFile(path); err == nil {
		existing, err := strconv.Atoi(strings.TrimSpace(string(bytes)))
		if err == nil && existing != os.Getpid() && alive(existing) {
			return errFactory.WithData(errors.ErrAlreadyRunning, existing)
		}
	} else if !os.IsNotExist(err) {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func Remove() error {
	path := filepath.Join(Dir, pidFile)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}
