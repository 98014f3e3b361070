package interact

import (
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/wagiedev/expectr-go/internal/config"
)

// Ops collects the terminal and signal operations the controller performs.
// Tests substitute their own to observe them without a real terminal.
type Ops struct {
	IsTerminal     func(fd int) bool
	GetState       func(fd int) (*term.State, error)
	Restore        func(fd int, state *term.State) error
	SetInteractive func(fd int) error
	TerminalSize   func(fd int) (*config.Winsize, error)
	Notify         func(c chan<- os.Signal, sig ...os.Signal)
	Stop           func(c chan<- os.Signal)
}

// DefaultOps returns the operations backed by the real terminal and os/signal.
func DefaultOps() *Ops {
	return &Ops{
		IsTerminal:     term.IsTerminal,
		GetState:       term.GetState,
		Restore:        term.Restore,
		SetInteractive: setInteractive,
		TerminalSize:   terminalSize,
		Notify:         signal.Notify,
		Stop:           signal.Stop,
	}
}

// setInteractive turns off canonical mode and echo and makes reads return
// after a single byte. ISIG stays on so the terminal still raises SIGINT
// and SIGTSTP for the controller to translate.
func setInteractive(fd int) error {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("get terminal attributes: %w", err)
	}

	termios.Lflag &^= unix.ICANON | unix.ECHO
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, termios); err != nil {
		return fmt.Errorf("set terminal attributes: %w", err)
	}

	return nil
}

func terminalSize(fd int) (*config.Winsize, error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return nil, fmt.Errorf("get terminal size: %w", err)
	}

	return &config.Winsize{Rows: ws.Row, Cols: ws.Col, X: ws.Xpixel, Y: ws.Ypixel}, nil
}
