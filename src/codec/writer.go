package codec

import (
	"bytes"
	"strconv"

	"twsclient/src/symbols"
)

// -----------------------------------------------------------------------------

// Writer assembles one message in memory so that it reaches the transport in
// a single write. Like Reader, the first error is sticky.
type Writer struct {
	buf bytes.Buffer
	err error
}

// -----------------------------------------------------------------------------

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Err returns the first encoding error.
func (w *Writer) Err() error {
	return w.err
}

// Fail records err unless an earlier error is already held.
func (w *Writer) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Bytes returns the encoded message.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Reset clears the buffer and any error.
func (w *Writer) Reset() {
	w.buf.Reset()
	w.err = nil
}

// -----------------------------------------------------------------------------

// String writes s followed by the terminator. An empty s is an absent value.
func (w *Writer) String(s string) *Writer {
	w.buf.WriteString(s)
	w.buf.WriteByte(Terminator)
	return w
}

// Int writes v in decimal.
func (w *Writer) Int(v int) *Writer {
	return w.String(strconv.Itoa(v))
}

// Int64 writes v in decimal.
func (w *Writer) Int64(v int64) *Writer {
	return w.String(strconv.FormatInt(v, 10))
}

// IntMax writes v, or an absent value when v is IntMax.
func (w *Writer) IntMax(v int) *Writer {
	if v == IntMax {
		return w.String("")
	}
	return w.Int(v)
}

// Float writes v with a '.' decimal separator and no exponent.
func (w *Writer) Float(v float64) *Writer {
	return w.String(FormatFloat(v))
}

// FloatMax writes v, or an absent value when v is DoubleMax.
func (w *Writer) FloatMax(v float64) *Writer {
	if v == DoubleMax {
		return w.String("")
	}
	return w.Float(v)
}

// Bool writes "1" or "0".
func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.String("1")
	}
	return w.String("0")
}

// -----------------------------------------------------------------------------

// WriteSymbol encodes v through tbl.
func WriteSymbol[T comparable](w *Writer, tbl *symbols.Table[T], v T) *Writer {
	code, err := tbl.Encode(v)
	if err != nil {
		w.Fail(err)
		return w
	}
	return w.String(code)
}

// -----------------------------------------------------------------------------

// FormatFloat renders v the way the peer parses doubles.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
