// Package client is the caller side of the gateway protocol: handshake,
// request encoding, the single dispatcher goroutine, request/response
// correlation and the market data snapshots fed by it.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"twsclient/src/codec"
	"twsclient/src/helpers"
	"twsclient/src/interfaces"
	"twsclient/src/logger"
	"twsclient/src/marketdata"
	"twsclient/src/metrics"
	"twsclient/src/models"
	"twsclient/src/protocol"
)

// -----------------------------------------------------------------------------

type Options struct {
	Host string
	Port int

	// ClientID is sent during the handshake. Zero derives one from the local
	// endpoint.
	ClientID int

	// ClientVersion defaults to protocol.ClientVersion.
	ClientVersion    int
	MinServerVersion int

	ConnectTimeout time.Duration
	RequestTimeout time.Duration

	// WrapConn, when set, sees the raw connection before the handshake. The
	// recorder hooks in here.
	WrapConn func(net.Conn) net.Conn

	Engine  *marketdata.Engine
	Journal interfaces.IOrderJournal
	Handler interfaces.IEventHandler
	Metrics *metrics.Collectors
	Logger  *logger.Logger
}

// OptionsFromConfig fills the connection settings of the gateway section.
func OptionsFromConfig(c models.MGatewayConfig) Options {
	return Options{
		Host:             c.Host,
		Port:             c.Port,
		ClientID:         c.ClientID,
		ClientVersion:    c.ClientVersion,
		MinServerVersion: c.MinServerVersion,
		ConnectTimeout:   time.Duration(c.ConnectTimeoutSec) * time.Second,
		RequestTimeout:   time.Duration(c.RequestTimeoutSec) * time.Second,
	}
}

// -----------------------------------------------------------------------------

// session is one live connection. It is closed exactly once.
type session struct {
	conn          net.Conn
	reader        *codec.Reader
	serverVersion int
	serverTime    string
	done          chan struct{}

	closeOnce sync.Once
	closing   atomic.Bool
}

type handlerBox struct{ h interfaces.IEventHandler }

type Client struct {
	opts    Options
	log     *logger.Logger
	metrics *metrics.Collectors
	engine  *marketdata.Engine
	orders  *orderRegistry
	pending *correlator
	handler atomic.Pointer[handlerBox]

	// writeMu serialises the handshake, every request write and the
	// session swap on disconnect.
	writeMu sync.Mutex
	sess    *session

	nextRequestID atomic.Int64
	nextOrderID   atomic.Int64
}

// -----------------------------------------------------------------------------

func New(opts Options) *Client {
	if opts.ClientVersion <= 0 {
		opts.ClientVersion = protocol.ClientVersion
	}
	if opts.MinServerVersion <= 0 {
		opts.MinServerVersion = 1
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger("Client")
	}
	if opts.Engine == nil {
		opts.Engine = marketdata.NewEngine(marketdata.Options{Logger: opts.Logger, Metrics: opts.Metrics})
	}

	c := &Client{
		opts:    opts,
		log:     opts.Logger,
		metrics: opts.Metrics,
		engine:  opts.Engine,
		orders:  newOrderRegistry(opts.Journal, opts.Logger),
		pending: newCorrelator(opts.Metrics),
	}
	c.SetHandler(opts.Handler)
	return c
}

// SetHandler replaces the event handler. Nil installs a no-op handler.
func (c *Client) SetHandler(h interfaces.IEventHandler) {
	if h == nil {
		h = interfaces.NoopHandler{}
	}
	c.handler.Store(&handlerBox{h})
}

func (c *Client) events() interfaces.IEventHandler {
	return c.handler.Load().h
}

// -----------------------------------------------------------------------------
// Connect / Disconnect
// -----------------------------------------------------------------------------

// Connect dials the configured gateway and runs the handshake.
func (c *Client) Connect(ctx context.Context) error {
	addr := net.JoinHostPort(c.opts.Host, strconv.Itoa(c.opts.Port))
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	return c.ConnectConn(ctx, conn)
}

// ConnectConn runs the handshake over an established connection and starts
// the dispatcher. conn is closed on failure.
func (c *Client) ConnectConn(ctx context.Context, conn net.Conn) error {
	if c.opts.WrapConn != nil {
		conn = c.opts.WrapConn(conn)
	}

	c.writeMu.Lock()
	if c.sess != nil {
		c.writeMu.Unlock()
		conn.Close()
		return errors.New("already connected")
	}
	sess, err := c.handshake(ctx, conn)
	if err != nil {
		c.writeMu.Unlock()
		conn.Close()
		return err
	}
	c.sess = sess
	c.writeMu.Unlock()

	c.log.Info("Connected: server version %d, server time '%s'", sess.serverVersion, sess.serverTime)
	c.events().OnConnected(sess.serverVersion, sess.serverTime)
	go c.readLoop(sess)
	return nil
}

// -----------------------------------------------------------------------------

func (c *Client) handshake(ctx context.Context, conn net.Conn) (*session, error) {
	deadline := time.Now().Add(c.opts.ConnectTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)
	defer conn.SetDeadline(time.Time{})

	if _, err := conn.Write(codec.NewWriter().Int(c.opts.ClientVersion).Bytes()); err != nil {
		return nil, fmt.Errorf("send client version: %w", err)
	}

	r := codec.NewReader(bufio.NewReader(conn))
	sess := &session{conn: conn, reader: r, done: make(chan struct{})}
	sess.serverVersion = r.Int()
	if sess.serverVersion >= protocol.MinServerVerHandshakeTime {
		sess.serverTime = r.String()
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read server version: %w", err)
	}

	if sess.serverVersion < c.opts.MinServerVersion {
		return nil, helpers.ProtocolTooOld("connection", c.opts.MinServerVersion, sess.serverVersion)
	}

	if sess.serverVersion >= protocol.MinServerVerHandshakeClientID {
		id := c.opts.ClientID
		if id == 0 {
			id = DeriveClientID(conn.LocalAddr())
		}
		if _, err := conn.Write(codec.NewWriter().Int(id).Bytes()); err != nil {
			return nil, fmt.Errorf("send client id: %w", err)
		}
	}
	return sess, nil
}

// DeriveClientID builds an id from the low byte of the local address and the
// local port. Non-TCP addresses yield 0.
func DeriveClientID(addr net.Addr) int {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || len(tcp.IP) == 0 {
		return 0
	}
	ip := tcp.IP
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	return int(ip[len(ip)-1])<<16 | tcp.Port
}

// -----------------------------------------------------------------------------

// Disconnect closes the connection. Pending one-shot calls fail with a
// Disconnected error and the handler is told once.
func (c *Client) Disconnect() {
	c.writeMu.Lock()
	sess := c.sess
	c.writeMu.Unlock()
	if sess != nil {
		c.teardown(sess, nil)
	}
}

// Reconnect drops the current connection, if any, and dials again.
func (c *Client) Reconnect(ctx context.Context) error {
	c.Disconnect()
	return c.Connect(ctx)
}

// teardown ends sess exactly once, whoever notices first.
func (c *Client) teardown(sess *session, cause error) {
	sess.closeOnce.Do(func() {
		sess.closing.Store(true)
		sess.conn.Close()

		c.writeMu.Lock()
		if c.sess == sess {
			c.sess = nil
		}
		c.writeMu.Unlock()

		if cause != nil {
			c.log.Warning("Disconnected: %v", cause)
		} else {
			c.log.Info("Disconnected")
		}
		c.pending.failAll(helpers.Disconnected(cause))
		c.engine.Clear()
		c.metrics.Disconnect()
		c.events().OnDisconnected(cause)
	})
}

// -----------------------------------------------------------------------------

func (c *Client) IsConnected() bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.sess != nil
}

// ServerVersion returns the negotiated version, or 0 when not connected.
func (c *Client) ServerVersion() int {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.sess == nil {
		return 0
	}
	return c.sess.serverVersion
}

func (c *Client) ServerTime() string {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.serverTime
}

// Done is closed when the current connection's dispatcher exits. It returns
// nil when not connected.
func (c *Client) Done() <-chan struct{} {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.sess == nil {
		return nil
	}
	return c.sess.done
}

// -----------------------------------------------------------------------------
// Ids
// -----------------------------------------------------------------------------

// NextRequestID mints a request id. Safe for concurrent use.
func (c *Client) NextRequestID() int {
	return int(c.nextRequestID.Add(1))
}

// NextOrderID mints an order id from the peer's next valid id.
func (c *Client) NextOrderID() int {
	return int(c.nextOrderID.Add(1) - 1)
}

func (c *Client) observeNextValidID(id int) {
	for {
		cur := c.nextOrderID.Load()
		if int64(id) <= cur || c.nextOrderID.CompareAndSwap(cur, int64(id)) {
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Sending
// -----------------------------------------------------------------------------

// send encodes req into one buffer and writes it under the write lock. A
// ProtocolTooOld rejection leaves the connection alone; any other failure
// tears it down.
func (c *Client) send(req protocol.Request) error {
	c.writeMu.Lock()
	sess := c.sess
	if sess == nil {
		c.writeMu.Unlock()
		return helpers.NotConnected(req.Tag().String())
	}

	w := codec.NewWriter()
	if err := protocol.EncodeRequest(w, sess.serverVersion, req); err != nil {
		c.writeMu.Unlock()
		if errors.Is(err, helpers.ErrProtocolTooOld) {
			return err
		}
		c.teardown(sess, err)
		return fmt.Errorf("encode %v: %w", req.Tag(), err)
	}
	_, err := sess.conn.Write(w.Bytes())
	c.writeMu.Unlock()

	if err != nil {
		c.teardown(sess, err)
		return helpers.Disconnected(err)
	}
	c.metrics.RequestSent(req.Tag().String())
	c.log.Debug("Sent %v", req.Tag())
	return nil
}

// -----------------------------------------------------------------------------
// Read loop
// -----------------------------------------------------------------------------

func (c *Client) readLoop(sess *session) {
	defer close(sess.done)

	for {
		msg, err := protocol.DecodeMessage(sess.reader, sess.serverVersion)
		if err != nil {
			switch {
			case sess.closing.Load():
				c.teardown(sess, nil)
			case errors.Is(err, io.EOF):
				c.teardown(sess, io.EOF)
			default:
				c.metrics.DecodeError()
				c.log.Error("Dispatcher stopped: %v", err)
				c.events().OnInternalFault(err)
				c.teardown(sess, err)
			}
			return
		}
		c.metrics.MessageDecoded(msg.Tag().String())
		c.dispatch(sess, msg)
	}
}
