package record

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"twsclient/src/codec"
	"twsclient/src/logger"
	"twsclient/src/peer"
	"twsclient/src/protocol"
)

// -----------------------------------------------------------------------------
// MessageDecoder
// -----------------------------------------------------------------------------

// MessageDecoder rebuilds peer messages from raw inbound bytes fed in
// arbitrary chunks. The first values are the server half of the handshake.
type MessageDecoder struct {
	buf   []byte
	stage int

	ServerVersion int
	ServerTime    string
}

const (
	stageServerVersion = iota
	stageServerTime
	stageMessages
)

func NewMessageDecoder() *MessageDecoder {
	return &MessageDecoder{}
}

// Handshaken reports whether the server version and time have been read.
func (d *MessageDecoder) Handshaken() bool { return d.stage == stageMessages }

// Feed appends p and returns every message that is now complete.
func (d *MessageDecoder) Feed(p []byte) ([]protocol.Message, error) {
	d.buf = append(d.buf, p...)
	var out []protocol.Message

	for len(d.buf) > 0 {
		r := codec.NewReader(bytes.NewReader(d.buf))
		switch d.stage {
		case stageServerVersion:
			d.ServerVersion = r.Int()
		case stageServerTime:
			d.ServerTime = r.String()
		default:
			msg, err := protocol.DecodeMessage(r, d.ServerVersion)
			if incomplete(err) {
				return out, nil
			}
			if err != nil {
				return out, err
			}
			out = append(out, msg)
		}
		if err := r.Err(); err != nil {
			if incomplete(err) {
				return out, nil
			}
			return out, err
		}

		switch d.stage {
		case stageServerVersion:
			d.stage = stageMessages
			if d.ServerVersion >= protocol.MinServerVerHandshakeTime {
				d.stage = stageServerTime
			}
		case stageServerTime:
			d.stage = stageMessages
		}
		d.buf = d.buf[r.BytesRead():]
	}
	return out, nil
}

func incomplete(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// -----------------------------------------------------------------------------
// Player
// -----------------------------------------------------------------------------

// Clock is a time source that follows the timestamps of the recording being
// played, for components that would otherwise read the wall clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Player walks a recording in file order. Received bytes are decoded as peer
// messages, sent bytes as client requests. Callbacks that are nil are
// skipped. A non-nil Clock is set to each record's timestamp before its
// callbacks run.
type Player struct {
	OnHandshake func(serverVersion int, serverTime string)
	OnMessage   func(at time.Time, msg protocol.Message)
	OnRequest   func(at time.Time, req protocol.Request)
	Clock       *Clock
	Logger      *logger.Logger
}

type Stats struct {
	Records       int
	SentBytes     int
	ReceivedBytes int
	Messages      int
	Requests      int
	ServerVersion int
	ClientVersion int
	ClientID      int
	First         time.Time
	Last          time.Time
}

func (s Stats) Duration() time.Duration {
	if s.First.IsZero() {
		return 0
	}
	return s.Last.Sub(s.First)
}

// Play reads r to the end. A recording cut inside a record or inside a
// message is not an error; the stats say how far it got.
func (p *Player) Play(ctx context.Context, r io.Reader) (Stats, error) {
	log := p.Logger
	if log == nil {
		log = logger.NewNopLogger("Player")
	}

	messages := NewMessageDecoder()
	requests := peer.NewRequestDecoder()
	handshaken := false
	var st Stats

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		rec, err := ReadRecord(r)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			log.Warning("Recording truncated after %d records", st.Records)
			break
		}
		if err != nil {
			return st, fmt.Errorf("record %d: %w", st.Records+1, err)
		}

		st.Records++
		if st.First.IsZero() {
			st.First = rec.At
		}
		st.Last = rec.At
		if p.Clock != nil {
			p.Clock.Set(rec.At)
		}

		switch rec.Kind {
		case Received:
			st.ReceivedBytes += len(rec.Data)
			msgs, err := messages.Feed(rec.Data)
			if !handshaken && messages.Handshaken() {
				handshaken = true
				requests.SetServerVersion(messages.ServerVersion)
				if p.OnHandshake != nil {
					p.OnHandshake(messages.ServerVersion, messages.ServerTime)
				}
			}
			for _, m := range msgs {
				st.Messages++
				if p.OnMessage != nil {
					p.OnMessage(rec.At, m)
				}
			}
			if err != nil {
				return st, fmt.Errorf("record %d: %w", st.Records, err)
			}

		case Sent:
			st.SentBytes += len(rec.Data)
			reqs, err := requests.Feed(rec.Data)
			for _, q := range reqs {
				st.Requests++
				if p.OnRequest != nil {
					p.OnRequest(rec.At, q)
				}
			}
			if err != nil {
				return st, fmt.Errorf("record %d: %w", st.Records, err)
			}
		}
	}

	st.ServerVersion = messages.ServerVersion
	st.ClientVersion = requests.ClientVersion
	st.ClientID = requests.ClientID
	if n := requests.Pending(); n > 0 {
		log.Warning("Recording ends inside a request (%d bytes)", n)
	}
	log.Info("Replayed %d records: %d messages, %d requests", st.Records, st.Messages, st.Requests)
	return st, nil
}
