package data

import (
	"bufio"
	"io"
)

// lineReader yields only whole newline-terminated lines. A tailed CSV
// file routinely ends mid-row between writes; buffering the partial
// tail until its newline arrives keeps the CSV parser from ever seeing
// a truncated record.
type lineReader struct {
	r       *bufio.Reader
	partial []byte
}

var _ io.Reader = (*lineReader)(nil)

// NewLineReader wraps r so that Read returns io.EOF instead of a
// partial trailing line. Callers retry the Read after the underlying
// stream grows.
func NewLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r: bufio.NewReader(r),
	}
}

func (l *lineReader) Read(b []byte) (int, error) {
	data, err := l.r.ReadBytes('\n')
	if err != nil {
		// Hold the incomplete tail for the next attempt.
		l.partial = append(l.partial, data...)
		return 0, io.EOF
	}
	var n int
	if len(l.partial) > 0 {
		n = copy(b, l.partial)
		l.partial = l.partial[:copy(l.partial, l.partial[n:])]
		b = b[n:]
	}
	return n + copy(b, data), nil
}
