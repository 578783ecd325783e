// Package peer is the server side of the text protocol: enough of a gateway
// to accept a client, negotiate the handshake, read its requests back into
// typed values and push scripted messages at it.
package peer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"twsclient/src/codec"
	"twsclient/src/logger"
	"twsclient/src/protocol"
)

type Options struct {
	ServerVersion int

	// Timestamp is sent with server versions 20 and above. Empty means now.
	Timestamp string

	// NextValidID is announced right after the handshake when positive.
	NextValidID int

	// OnRequest receives every decoded request on the read goroutine. When
	// nil, requests are queued for Next.
	OnRequest func(p *Peer, req protocol.Request)

	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

type Peer struct {
	opts Options
	log  *logger.Logger
	conn net.Conn
	r    *codec.Reader

	clientVersion int
	clientID      int

	writeMu  sync.Mutex
	requests chan protocol.Request
	done     chan struct{}
	err      error
}

// -----------------------------------------------------------------------------

// Serve runs the server half of the handshake on conn and starts reading
// requests. It blocks until the handshake completes.
func Serve(conn net.Conn, opts Options) (*Peer, error) {
	if opts.ServerVersion <= 0 {
		opts.ServerVersion = protocol.MaxServerVersion
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger("Peer")
	}

	p := &Peer{
		opts:     opts,
		log:      opts.Logger,
		conn:     conn,
		r:        codec.NewReader(bufio.NewReader(conn)),
		clientID: -1,
		requests: make(chan protocol.Request, 256),
		done:     make(chan struct{}),
	}
	if err := p.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	go p.readLoop()
	return p, nil
}

// Listen accepts a single client on ln and serves it.
func Listen(ctx context.Context, ln net.Listener, opts Options) (*Peer, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	accepted := make(chan result, 1)
	go func() {
		conn, err := ln.Accept()
		accepted <- result{conn, err}
	}()

	select {
	case res := <-accepted:
		if res.err != nil {
			return nil, res.err
		}
		return Serve(res.conn, opts)
	case <-ctx.Done():
		ln.Close()
		return nil, ctx.Err()
	}
}

// -----------------------------------------------------------------------------

func (p *Peer) handshake() error {
	p.clientVersion = p.r.Int()
	if err := p.r.Err(); err != nil {
		return fmt.Errorf("read client version: %w", err)
	}

	w := codec.NewWriter()
	w.Int(p.opts.ServerVersion)
	if p.opts.ServerVersion >= protocol.MinServerVerHandshakeTime {
		ts := p.opts.Timestamp
		if ts == "" {
			ts = time.Now().Format("20060102 15:04:05 MST")
		}
		w.String(ts)
	}
	if _, err := p.conn.Write(w.Bytes()); err != nil {
		return fmt.Errorf("write server version: %w", err)
	}

	if p.opts.ServerVersion >= protocol.MinServerVerHandshakeClientID {
		p.clientID = p.r.Int()
		if err := p.r.Err(); err != nil {
			return fmt.Errorf("read client id: %w", err)
		}
	}
	p.log.Info("Client connected: version %d, id %d", p.clientVersion, p.clientID)

	if p.opts.NextValidID > 0 {
		return p.Send(&protocol.NextValidIDMsg{OrderID: p.opts.NextValidID})
	}
	return nil
}

// -----------------------------------------------------------------------------

func (p *Peer) readLoop() {
	defer close(p.done)
	defer close(p.requests)

	for {
		req, version, err := protocol.DecodeRequestVersion(p.r, p.opts.ServerVersion)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				p.log.Warning("Read loop stopped: %v", err)
				p.err = err
			}
			return
		}
		p.log.Debug("Received %v version %d", req.Tag(), version)
		if p.opts.OnRequest != nil {
			p.opts.OnRequest(p, req)
			continue
		}
		p.requests <- req
	}
}

// -----------------------------------------------------------------------------

func (p *Peer) ClientVersion() int { return p.clientVersion }

// ClientID is -1 when the server version was too old to receive one.
func (p *Peer) ClientID() int { return p.clientID }

func (p *Peer) ServerVersion() int { return p.opts.ServerVersion }

// -----------------------------------------------------------------------------

// Send encodes msgs back to back and writes them in one call.
func (p *Peer) Send(msgs ...protocol.Message) error {
	w := codec.NewWriter()
	for _, m := range msgs {
		if err := protocol.EncodeMessage(w, p.opts.ServerVersion, m); err != nil {
			return fmt.Errorf("encode %v: %w", m.Tag(), err)
		}
	}
	return p.SendRaw(w.Bytes())
}

// SendRaw writes b unchanged, for feeding malformed traffic.
func (p *Peer) SendRaw(b []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_, err := p.conn.Write(b)
	return err
}

// -----------------------------------------------------------------------------

// Next returns the next queued request. It fails once the client has gone.
func (p *Peer) Next(ctx context.Context) (protocol.Request, error) {
	select {
	case req, ok := <-p.requests:
		if !ok {
			if p.err != nil {
				return nil, p.err
			}
			return nil, io.EOF
		}
		return req, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed when the read loop exits.
func (p *Peer) Done() <-chan struct{} { return p.done }

func (p *Peer) Close() error {
	return p.conn.Close()
}
