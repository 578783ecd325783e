// Package record captures the raw bytes of a gateway session and plays them
// back. A recording is a sequence of records:
//
//	marker    uint32 LE  0x5EED5E17 sent by the client, 0x7EC0DED1 received
//	timestamp int64 LE   unix nanoseconds
//	length    uint32 LE
//	data      length bytes
package record

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind uint32

const (
	Sent     Kind = 0x5EED5E17
	Received Kind = 0x7EC0DED1
)

func (k Kind) String() string {
	switch k {
	case Sent:
		return "sent"
	case Received:
		return "received"
	}
	return fmt.Sprintf("unknown(%#x)", uint32(k))
}

// FileExt is appended to recording names created by CreateFile.
const FileExt = ".twsrec"

const headerSize = 16

// maxRecord bounds the length field so a corrupt file cannot trigger a huge
// allocation.
const maxRecord = 64 << 20

var ErrBadMarker = errors.New("record: bad marker")

type Record struct {
	Kind Kind
	At   time.Time
	Data []byte
}

// -----------------------------------------------------------------------------
// Recorder
// -----------------------------------------------------------------------------

type Recorder struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	now    func() time.Time
	err    error
}

func NewRecorder(w io.Writer) *Recorder {
	r := &Recorder{w: bufio.NewWriter(w), now: time.Now}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// CreateFile opens a new uniquely named recording under dir.
func CreateFile(dir string) (*Recorder, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create recording directory: %w", err)
	}
	name := time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString() + FileExt
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create recording: %w", err)
	}
	return NewRecorder(f), path, nil
}

// -----------------------------------------------------------------------------

// Write appends one record and flushes it. After the first failure every
// call returns that failure.
func (r *Recorder) Write(kind Kind, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(kind))
	binary.LittleEndian.PutUint64(hdr[4:12], uint64(r.now().UnixNano()))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(data)))

	if _, err := r.w.Write(hdr[:]); err != nil {
		r.err = err
		return err
	}
	if _, err := r.w.Write(data); err != nil {
		r.err = err
		return err
	}
	r.err = r.w.Flush()
	return r.err
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.w.Flush()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// -----------------------------------------------------------------------------

// Wrap returns a connection that records every chunk read from and written
// to conn. Recording failures never fail the connection.
func (r *Recorder) Wrap(conn net.Conn) net.Conn {
	return &recordingConn{Conn: conn, rec: r}
}

type recordingConn struct {
	net.Conn
	rec *Recorder
}

func (c *recordingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.rec.Write(Received, p[:n])
	}
	return n, err
}

func (c *recordingConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if n > 0 {
		c.rec.Write(Sent, p[:n])
	}
	return n, err
}

// Close ends the recording together with the connection.
func (c *recordingConn) Close() error {
	err := c.Conn.Close()
	c.rec.Close()
	return err
}

// -----------------------------------------------------------------------------
// Reading
// -----------------------------------------------------------------------------

// ReadRecord reads the next record. It returns io.EOF at a clean end and
// io.ErrUnexpectedEOF for a truncated record.
func ReadRecord(r io.Reader) (Record, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Record{}, err
	}

	kind := Kind(binary.LittleEndian.Uint32(hdr[0:4]))
	if kind != Sent && kind != Received {
		return Record{}, fmt.Errorf("%w %#x", ErrBadMarker, uint32(kind))
	}
	n := binary.LittleEndian.Uint32(hdr[12:16])
	if n > maxRecord {
		return Record{}, fmt.Errorf("record: length %d exceeds limit", n)
	}

	rec := Record{
		Kind: kind,
		At:   time.Unix(0, int64(binary.LittleEndian.Uint64(hdr[4:12]))),
		Data: make([]byte, n),
	}
	if _, err := io.ReadFull(r, rec.Data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return Record{}, err
	}
	return rec, nil
}
