package transport

import (
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/wagiedev/expectr-go/internal/errors"
)

// ParseSignal resolves a signal name such as "TERM", "SIGTERM", "term" or a
// numeric string. An empty name means SIGTERM.
func ParseSignal(name string) (syscall.Signal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return syscall.SIGTERM, nil
	}

	if num, err := strconv.Atoi(name); err == nil {
		if num <= 0 || unix.SignalName(syscall.Signal(num)) == "" {
			return 0, &errors.ArgumentError{Argument: "signal", Reason: "unknown signal number " + name}
		}

		return syscall.Signal(num), nil
	}

	upper := strings.ToUpper(name)
	if !strings.HasPrefix(upper, "SIG") {
		upper = "SIG" + upper
	}

	sig := unix.SignalNum(upper)
	if sig == 0 {
		return 0, &errors.ArgumentError{Argument: "signal", Reason: "unknown signal " + name}
	}

	return sig, nil
}
