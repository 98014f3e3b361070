package transport

import (
	"os"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/wagiedev/expectr-go/internal/config"
)

// InitialWindowSize picks the size a new pseudoterminal starts with:
// the configured size, else the controlling terminal's, else the default.
func InitialWindowSize(options *config.Options) *config.Winsize {
	if options.WindowSize != nil {
		ws := *options.WindowSize

		return &ws
	}

	if ws, err := terminalSize(os.Stdin); err == nil {
		return ws
	}

	return &config.Winsize{Rows: config.DefaultRows, Cols: config.DefaultCols}
}

// terminalSize returns the size of f when it is a terminal.
func terminalSize(f *os.File) (*config.Winsize, error) {
	if !term.IsTerminal(int(f.Fd())) {
		return nil, os.ErrInvalid
	}

	ws, err := pty.GetsizeFull(f)
	if err != nil {
		return nil, err
	}

	return fromPty(ws), nil
}

func fromPty(ws *pty.Winsize) *config.Winsize {
	return &config.Winsize{Rows: ws.Rows, Cols: ws.Cols, X: ws.X, Y: ws.Y}
}

func toPty(ws *config.Winsize) *pty.Winsize {
	return &pty.Winsize{Rows: ws.Rows, Cols: ws.Cols, X: ws.X, Y: ws.Y}
}
