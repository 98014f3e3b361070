package pump

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeChunk is the scratch size for one transform step.
const decodeChunk = 4096

// decoder turns a stream of raw bytes into valid UTF-8 text. Invalid bytes
// become U+FFFD; a multi-byte sequence split across reads is held back until
// the rest of it arrives.
type decoder struct {
	t       transform.Transformer
	pending []byte
	dst     []byte
}

func newDecoder() *decoder {
	return &decoder{
		t:   unicode.UTF8.NewDecoder(),
		dst: make([]byte, decodeChunk),
	}
}

// Decode converts p. With atEOF set any held-back partial sequence is
// flushed as U+FFFD.
func (d *decoder) Decode(p []byte, atEOF bool) string {
	src := p
	if len(d.pending) > 0 {
		src = append(d.pending, p...)
		d.pending = nil
	}

	var out []byte

	for {
		nDst, nSrc, err := d.t.Transform(d.dst, src, atEOF)
		out = append(out, d.dst[:nDst]...)
		src = src[nSrc:]

		if err == transform.ErrShortDst && (nDst > 0 || nSrc > 0) {
			continue
		}

		break
	}

	if len(src) > 0 && !atEOF {
		d.pending = append([]byte(nil), src...)
	}

	if atEOF {
		d.t.Reset()
	}

	return string(out)
}
