package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/corey/ahotrie/internal/adapters/socket"
)

// exitError carries a grep-style exit code: 0=match, 1=no match, 2=error.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	switch e.code {
	case 0:
		return ""
	case 1:
		return "no match"
	default:
		return fmt.Sprintf("exit %d", e.code)
	}
}

func (e exitError) Unwrap() error { return e.err }

// errNoMatch is returned by query commands that found nothing.
var errNoMatch = exitError{code: 1}

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 2
}

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock returns actionable guidance when a bbolt open fails due to
// lock contention.
func diagnoseDBLock(root string) string {
	sockPath := socket.SocketPath(root)
	if _, err := os.Stat(sockPath); err == nil && !socket.NewClient(sockPath).Ping() {
		return fmt.Sprintf("database is locked; daemon socket exists but is not responding\n"+
			"  -> a previous daemon may have crashed\n"+
			"  -> find the process:  ps aux | grep 'ahotrie daemon'\n"+
			"  -> clean up socket:   rm %s", sockPath)
	}
	return "database is locked by another process\n" +
		"  -> find the process:  ps aux | grep ahotrie\n" +
		"  -> then retry your command"
}

// storeError adds lock diagnostics to a store open failure.
func storeError(root string, err error) error {
	if isDBLockError(err) {
		return fmt.Errorf("%w\n%s", err, diagnoseDBLock(root))
	}
	return err
}
