package codec

import (
	"fmt"
	"io"
	"strconv"

	"twsclient/src/symbols"
)

// -----------------------------------------------------------------------------

// Reader decodes values from a byte stream. The first error is sticky: once
// a read fails, every later read returns a zero value and Err reports the
// original failure.
type Reader struct {
	src  io.ByteReader
	err  error
	buf  []byte
	read int64
}

// -----------------------------------------------------------------------------

// NewReader wraps src. Callers should hand in a buffered source.
func NewReader(src io.ByteReader) *Reader {
	return &Reader{src: src, buf: make([]byte, 0, 64)}
}

// -----------------------------------------------------------------------------

// Err returns the first error encountered. io.EOF means the stream ended
// cleanly before a value started; io.ErrUnexpectedEOF means it ended inside one.
func (r *Reader) Err() error {
	return r.err
}

// BytesRead reports how many bytes have been consumed.
func (r *Reader) BytesRead() int64 {
	return r.read
}

// Fail records err unless an earlier error is already held.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// -----------------------------------------------------------------------------

// field reads raw bytes up to the next terminator.
func (r *Reader) field() ([]byte, bool) {
	if r.err != nil {
		return nil, false
	}
	r.buf = r.buf[:0]
	for {
		b, err := r.src.ReadByte()
		if err != nil {
			if err == io.EOF && len(r.buf) > 0 {
				err = io.ErrUnexpectedEOF
			}
			r.err = err
			return nil, false
		}
		r.read++
		if b == Terminator {
			return r.buf, true
		}
		r.buf = append(r.buf, b)
	}
}

// -----------------------------------------------------------------------------

// OptString returns the text of the next value and whether it was present.
func (r *Reader) OptString() (string, bool) {
	raw, ok := r.field()
	if !ok || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

// String returns the next value, or "" when absent.
func (r *Reader) String() string {
	s, _ := r.OptString()
	return s
}

// -----------------------------------------------------------------------------

// Int parses the next value as an integer; absent decodes to 0.
func (r *Reader) Int() int {
	s, ok := r.OptString()
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		r.Fail(fmt.Errorf("codec: bad int %q: %w", s, err))
		return 0
	}
	return v
}

// IntMax parses the next value; absent decodes to IntMax.
func (r *Reader) IntMax() int {
	s, ok := r.OptString()
	if !ok {
		if r.err != nil {
			return 0
		}
		return IntMax
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		r.Fail(fmt.Errorf("codec: bad int %q: %w", s, err))
		return 0
	}
	return v
}

// Int64 parses the next value as a 64-bit integer; absent decodes to 0.
func (r *Reader) Int64() int64 {
	s, ok := r.OptString()
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		r.Fail(fmt.Errorf("codec: bad int64 %q: %w", s, err))
		return 0
	}
	return v
}

// -----------------------------------------------------------------------------

// Float parses the next value as a double; absent decodes to 0.
func (r *Reader) Float() float64 {
	s, ok := r.OptString()
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.Fail(fmt.Errorf("codec: bad double %q: %w", s, err))
		return 0
	}
	return v
}

// FloatMax parses the next value; absent decodes to DoubleMax.
func (r *Reader) FloatMax() float64 {
	s, ok := r.OptString()
	if !ok {
		if r.err != nil {
			return 0
		}
		return DoubleMax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.Fail(fmt.Errorf("codec: bad double %q: %w", s, err))
		return 0
	}
	return v
}

// -----------------------------------------------------------------------------

// Bool decodes an integer flag; any non-zero value is true.
func (r *Reader) Bool() bool {
	return r.Int() != 0
}

// -----------------------------------------------------------------------------

// ReadSymbol decodes the next value through tbl.
func ReadSymbol[T comparable](r *Reader, tbl *symbols.Table[T]) T {
	var zero T
	raw, ok := r.field()
	if !ok {
		return zero
	}
	v, err := tbl.Decode(string(raw))
	if err != nil {
		r.Fail(err)
		return zero
	}
	return v
}
