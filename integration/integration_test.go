//go:build integration

package integration

import (
	"io"
	"os/exec"
	"testing"
	"time"

	expectr "github.com/wagiedev/expectr-go"
)

// requireProgram skips the test if name is not installed.
func requireProgram(t *testing.T, name string) {
	t.Helper()

	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not installed", name)
	}
}

// quietOptions keeps sessions from echoing into test output.
func quietOptions(extra ...expectr.Option) []expectr.Option {
	return append([]expectr.Option{
		expectr.WithFlushBuffer(false),
		expectr.WithOutput(io.Discard),
		expectr.WithTimeout(10 * time.Second),
		expectr.WithGracePeriod(time.Second),
	}, extra...)
}
