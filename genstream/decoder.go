package genstream

import (
	"bytes"
	"io"
	"iter"
	"strings"
)

// readChunkSize is the read granularity used by Records. Record boundaries
// carry no relationship to it; the Decoder reassembles lines across reads.
const readChunkSize = 4096

// Decoder reassembles newline-delimited records from an unbounded byte
// stream. Bytes are buffered as received, so a chunk ending mid-line or even
// mid-rune is carried over to the next Feed: splits only ever happen at '\n',
// which cannot occur inside a multi-byte UTF-8 sequence.
type Decoder struct {
	buf []byte
}

// Feed appends a chunk and returns every complete line it unlocked, in
// arrival order. The trailing fragment after the last newline (possibly
// empty) is retained for the next call. A trailing "\r" is trimmed from each
// returned line.
func (d *Decoder) Feed(chunk []byte) []string {
	if len(chunk) > 0 {
		d.buf = append(d.buf, chunk...)
	}
	nl := bytes.LastIndexByte(d.buf, '\n')
	if nl < 0 {
		return nil
	}
	complete := d.buf[:nl]
	rest := d.buf[nl+1:]
	d.buf = append(d.buf[:0:0], rest...)

	lines := strings.Split(string(complete), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Pending returns the size of the buffered partial line. On end of stream
// that fragment is an incomplete record and is discarded, never emitted.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// Tail returns the buffered partial line. Producers reframing model output
// use it to flush a final line that arrived without a trailing newline.
func (d *Decoder) Tail() string {
	return string(d.buf)
}

// Records turns a byte stream into a lazy, order-preserving sequence of
// complete lines. Iteration ends at EOF; any residual partial line is
// dropped. Read errors end the sequence with a non-nil error.
func Records(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var dec Decoder
		chunk := make([]byte, readChunkSize)
		for {
			n, err := r.Read(chunk)
			if n > 0 {
				for _, line := range dec.Feed(chunk[:n]) {
					if !yield(line, nil) {
						return
					}
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
		}
	}
}
