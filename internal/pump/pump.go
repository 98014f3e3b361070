// Package pump moves a transport's output into a session buffer.
package pump

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/wagiedev/expectr-go/internal/buffer"
	"github.com/wagiedev/expectr-go/internal/config"
)

// drainWait bounds each read once the transport is gone.
const drainWait = 50 * time.Millisecond

// Config wires a pump to its session.
type Config struct {
	Transport config.Transport
	Buffer    *buffer.Buffer
	History   *buffer.History

	// Output receives raw output while Flush is set.
	Output io.Writer
	Flush  *atomic.Bool

	// Wait returns the longest a single read may block.
	Wait func() time.Duration
}

// Pump runs for the lifetime of a session, reading output with bounded waits.
// Read errors end the pump after the transport has marked itself gone; they
// never reach the caller.
type Pump struct {
	log *slog.Logger
	cfg Config
	dec *decoder
}

// New creates a pump.
func New(log *slog.Logger, cfg Config) *Pump {
	return &Pump{
		log: log.With("component", "pump"),
		cfg: cfg,
		dec: newDecoder(),
	}
}

// Run pumps until the transport is gone or ctx is done. Once the transport
// is gone the remaining output is drained. The buffer is sealed on return,
// waking any matcher one final time. Run always returns nil.
func (p *Pump) Run(ctx context.Context) error {
	defer p.finish()

	var buf []byte

	for {
		if ctx.Err() != nil {
			p.log.Debug("Pump stopped")

			return nil
		}

		if !p.cfg.Transport.Alive() {
			p.drain(buf)

			return nil
		}

		buf = p.chunk(buf)

		n, err := p.cfg.Transport.Read(buf, p.cfg.Wait())
		p.deliver(buf[:n])

		if err != nil {
			p.log.Debug("Output ended", "error", err)

			return nil
		}
	}
}

// drain reads whatever output is still buffered by the transport.
func (p *Pump) drain(buf []byte) {
	for {
		buf = p.chunk(buf)

		n, err := p.cfg.Transport.Read(buf, drainWait)
		p.deliver(buf[:n])

		if n == 0 || err != nil {
			return
		}
	}
}

// chunk returns a read buffer sized to the buffer's current size option.
func (p *Pump) chunk(buf []byte) []byte {
	size := p.cfg.Buffer.Size()
	if size <= 0 {
		size = config.DefaultBufferSize
	}

	if len(buf) != size {
		buf = make([]byte, size)
	}

	return buf
}

func (p *Pump) deliver(raw []byte) {
	if len(raw) == 0 {
		return
	}

	p.log.Debug("Read output", "bytes", len(raw))

	if p.cfg.History != nil {
		_, _ = p.cfg.History.Write(raw)
	}

	if p.cfg.Output != nil && p.cfg.Flush != nil && p.cfg.Flush.Load() {
		if _, err := p.cfg.Output.Write(raw); err != nil {
			p.log.Debug("Echo failed", "error", err)
		}
	}

	p.cfg.Buffer.Append(p.dec.Decode(raw, false))
}

func (p *Pump) finish() {
	p.cfg.Buffer.Append(p.dec.Decode(nil, true))
	p.cfg.Buffer.Seal()
}
