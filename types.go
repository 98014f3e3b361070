package expectr

import (
	"github.com/wagiedev/expectr-go/internal/buffer"
	"github.com/wagiedev/expectr-go/internal/config"
	"github.com/wagiedev/expectr-go/internal/interact"
	"github.com/wagiedev/expectr-go/internal/session"
	"github.com/wagiedev/expectr-go/internal/transport"
)

// Options configures a session. Prefer the functional With* options.
type Options = config.Options

// Winsize is a terminal window size.
type Winsize = config.Winsize

// Match describes a successful expect: the matched text, its capture groups
// and, for ExpectMap, the index of the case that fired.
type Match = buffer.Match

// Case pairs a pattern with the action run when it fires.
type Case = session.Case

// ExpectCases is the input of ExpectMap.
type ExpectCases = session.ExpectCases

// InteractHandle tracks a running interaction.
type InteractHandle = interact.Handle

// Producer returns the next piece of simulated output; io.EOF ends it.
type Producer = transport.Producer

// Consumer receives simulated input.
type Consumer = transport.Consumer
