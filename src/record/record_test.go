package record

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"twsclient/src/client"
	"twsclient/src/codec"
	"twsclient/src/interfaces"
	"twsclient/src/marketdata"
	"twsclient/src/models"
	"twsclient/src/peer"
	"twsclient/src/protocol"
)

func TestRecordFormat(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	at := time.Unix(1704294000, 123)
	rec.now = func() time.Time { return at }

	if err := rec.Write(Sent, []byte("46\x00")); err != nil {
		t.Fatal(err)
	}
	if err := rec.Write(Received, nil); err != nil {
		t.Fatal(err)
	}

	raw := buf.Bytes()
	if len(raw) != 2*headerSize+3 {
		t.Fatalf("recording is %d bytes", len(raw))
	}
	// Little endian marker of a sent record.
	if !bytes.Equal(raw[:4], []byte{0x17, 0x5E, 0xED, 0x5E}) {
		t.Errorf("marker bytes % x", raw[:4])
	}

	r := bytes.NewReader(raw)
	first, err := ReadRecord(r)
	if err != nil {
		t.Fatal(err)
	}
	if first.Kind != Sent || !first.At.Equal(at) || string(first.Data) != "46\x00" {
		t.Errorf("first = %+v", first)
	}
	second, err := ReadRecord(r)
	if err != nil {
		t.Fatal(err)
	}
	if second.Kind != Received || len(second.Data) != 0 {
		t.Errorf("second = %+v", second)
	}
	if _, err := ReadRecord(r); err != io.EOF {
		t.Errorf("end err = %v", err)
	}
}

func TestReadRecordErrors(t *testing.T) {
	var buf bytes.Buffer
	NewRecorder(&buf).Write(Received, []byte("hello"))
	whole := buf.Bytes()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"cut in header", whole[:10], io.ErrUnexpectedEOF},
		{"cut in data", whole[:len(whole)-2], io.ErrUnexpectedEOF},
		{"bad marker", append([]byte{1, 2, 3, 4}, whole[4:]...), ErrBadMarker},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecord(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "recordings")
	rec, path, err := CreateFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, FileExt) || filepath.Dir(path) != dir {
		t.Errorf("path = %s", path)
	}
	if err := rec.Write(Sent, []byte("x\x00")); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != headerSize+2 {
		t.Errorf("file size = %d", info.Size())
	}
}

// -----------------------------------------------------------------------------

func TestMessageDecoderByteByByte(t *testing.T) {
	w := codec.NewWriter().Int(38).String("20240103 10:00:00 EST")
	protocol.EncodeMessage(w, 38, &protocol.NextValidIDMsg{OrderID: 5})
	protocol.EncodeMessage(w, 38, &protocol.TickPriceMsg{MTickPrice: models.MTickPrice{RequestID: 1, Field: models.TickAsk, Price: 10.5, Size: 3}})
	raw := w.Bytes()

	d := NewMessageDecoder()
	var got []protocol.Message
	for i := range raw {
		msgs, err := d.Feed(raw[i : i+1])
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		got = append(got, msgs...)
	}

	if !d.Handshaken() || d.ServerVersion != 38 || d.ServerTime != "20240103 10:00:00 EST" {
		t.Errorf("handshake = %d %q", d.ServerVersion, d.ServerTime)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d messages", len(got))
	}
	if m, ok := got[0].(*protocol.NextValidIDMsg); !ok || m.OrderID != 5 {
		t.Errorf("first = %#v", got[0])
	}
	if m, ok := got[1].(*protocol.TickPriceMsg); !ok || m.Price != 10.5 || m.Field != models.TickAsk {
		t.Errorf("second = %#v", got[1])
	}
}

func TestMessageDecoderOldServerHasNoTime(t *testing.T) {
	w := codec.NewWriter().Int(15)
	protocol.EncodeMessage(w, 15, &protocol.NextValidIDMsg{OrderID: 1})

	d := NewMessageDecoder()
	msgs, err := d.Feed(w.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if d.ServerTime != "" || len(msgs) != 1 {
		t.Errorf("time=%q msgs=%d", d.ServerTime, len(msgs))
	}
}

// -----------------------------------------------------------------------------
// Record a live session, then play it back
// -----------------------------------------------------------------------------

type sessionEvents struct {
	interfaces.NoopHandler
	nextID       chan int
	marketData   chan models.MMarketDataEvent
	disconnected chan struct{}
}

func (h *sessionEvents) OnNextValidID(id int)                    { h.nextID <- id }
func (h *sessionEvents) OnMarketData(ev models.MMarketDataEvent) { h.marketData <- ev }
func (h *sessionEvents) OnDisconnected(error)                    { close(h.disconnected) }

func wait[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	var zero T
	return zero
}

func recordSession(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	h := &sessionEvents{
		nextID:       make(chan int, 4),
		marketData:   make(chan models.MMarketDataEvent, 16),
		disconnected: make(chan struct{}),
	}
	c := client.New(client.Options{ClientID: 9, Handler: h, WrapConn: rec.Wrap})

	cli, srv := net.Pipe()
	peers := make(chan *peer.Peer, 1)
	go func() {
		p, _ := peer.Serve(srv, peer.Options{ServerVersion: 38, Timestamp: "20240103 10:00:00 EST", NextValidID: 42})
		peers <- p
	}()
	if err := c.ConnectConn(context.Background(), cli); err != nil {
		t.Fatal(err)
	}
	p := <-peers
	if p == nil {
		t.Fatal("peer handshake failed")
	}
	wait(t, h.nextID)

	id, err := c.RequestMarketData(models.MContract{Symbol: "AAPL", SecType: models.SecTypeStock, Exchange: "SMART", Currency: "USD"}, "", false)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := p.Next(ctx); err != nil {
		t.Fatal(err)
	}
	p.Send(&protocol.TickPriceMsg{MTickPrice: models.MTickPrice{RequestID: id, Field: models.TickBid, Price: 150.25, Size: 100}})
	wait(t, h.marketData)

	p.Close()
	wait(t, h.disconnected)
	rec.Close()
	return buf.Bytes()
}

func TestRecordAndPlay(t *testing.T) {
	raw := recordSession(t)

	var (
		handshakes []int
		requests   []protocol.Request
		messages   []protocol.Message
	)
	player := &Player{
		OnHandshake: func(sv int, ts string) {
			handshakes = append(handshakes, sv)
			if ts != "20240103 10:00:00 EST" {
				t.Errorf("server time = %q", ts)
			}
		},
		OnRequest: func(_ time.Time, req protocol.Request) { requests = append(requests, req) },
		OnMessage: func(_ time.Time, msg protocol.Message) { messages = append(messages, msg) },
	}
	st, err := player.Play(context.Background(), bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}

	if len(handshakes) != 1 || handshakes[0] != 38 {
		t.Errorf("handshakes = %v", handshakes)
	}
	if st.ClientVersion != protocol.ClientVersion || st.ClientID != 9 || st.ServerVersion != 38 {
		t.Errorf("stats = %+v", st)
	}
	if len(requests) != 1 {
		t.Fatalf("requests = %#v", requests)
	}
	if q, ok := requests[0].(*protocol.MktDataRequest); !ok || q.Contract.Symbol != "AAPL" {
		t.Errorf("request = %#v", requests[0])
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %#v", messages)
	}
	if _, ok := messages[0].(*protocol.NextValidIDMsg); !ok {
		t.Errorf("first message = %#v", messages[0])
	}
	if st.Requests != 1 || st.Messages != 2 || st.Records == 0 {
		t.Errorf("stats = %+v", st)
	}
}

// Feeding the played messages into a fresh client rebuilds the snapshot the
// live session had.
func TestReplayRebuildsSnapshot(t *testing.T) {
	raw := recordSession(t)

	engine := marketdata.NewEngine(marketdata.Options{})
	replay := client.New(client.Options{Engine: engine})
	player := &Player{
		OnRequest: func(_ time.Time, req protocol.Request) {
			if q, ok := req.(*protocol.MktDataRequest); ok {
				engine.Subscribe(q.TickerID, q.Contract)
			}
		},
		OnMessage: func(_ time.Time, msg protocol.Message) { replay.Deliver(msg) },
	}
	if _, err := player.Play(context.Background(), bytes.NewReader(raw)); err != nil {
		t.Fatal(err)
	}

	snap, ok := replay.Snapshot(1)
	if !ok {
		t.Fatal("no snapshot for request 1")
	}
	if snap.Bid != 150.25 || snap.BidSize != 100 {
		t.Errorf("bid = %v x %d", snap.Bid, snap.BidSize)
	}
	if id := replay.NextOrderID(); id != 42 {
		t.Errorf("next order id = %d", id)
	}
}

func TestPlayTruncatedRecording(t *testing.T) {
	raw := recordSession(t)
	st, err := (&Player{}).Play(context.Background(), bytes.NewReader(raw[:len(raw)-3]))
	if err != nil {
		t.Fatal(err)
	}
	if st.Records == 0 {
		t.Error("nothing replayed")
	}
}

// The engine clock follows the record timestamps, so duplicate windows mean
// the same thing in replay as they did live.
func TestReplayClockFollowsRecording(t *testing.T) {
	tests := []struct {
		name           string
		gap            time.Duration
		wantEvents     int
		wantDuplicates int
	}{
		{"outside duplicate window", 2 * time.Second, 2, 0},
		{"inside duplicate window", 200 * time.Millisecond, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			rec := NewRecorder(&buf)
			at := time.Date(2024, 1, 3, 15, 0, 0, 0, time.UTC)
			rec.now = func() time.Time { return at }

			if err := rec.Write(Received, []byte("38\x0020240103 10:00:00 EST\x00")); err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 2; i++ {
				w := codec.NewWriter()
				tick := &protocol.TickSizeMsg{MTickSize: models.MTickSize{RequestID: 1, Field: models.TickBidSize, Size: 100}}
				if err := protocol.EncodeMessage(w, 38, tick); err != nil {
					t.Fatal(err)
				}
				at = at.Add(tt.gap)
				if err := rec.Write(Received, w.Bytes()); err != nil {
					t.Fatal(err)
				}
			}

			clock := &Clock{}
			engine := marketdata.NewEngine(marketdata.Options{
				Policy: models.MSessionPolicy{DuplicateTimeout: 500 * time.Millisecond},
				Now:    clock.Now,
			})
			replay := client.New(client.Options{Engine: engine})
			player := &Player{
				Clock: clock,
				OnHandshake: func(int, string) {
					engine.Subscribe(1, models.MContract{Symbol: "AAPL", SecType: models.SecTypeStock, Exchange: "SMART", Currency: "USD"})
				},
				OnMessage: func(_ time.Time, msg protocol.Message) { replay.Deliver(msg) },
			}
			if _, err := player.Play(context.Background(), bytes.NewReader(buf.Bytes())); err != nil {
				t.Fatal(err)
			}

			if !clock.Now().Equal(at) {
				t.Errorf("clock = %v, want %v", clock.Now(), at)
			}
			snap, ok := replay.Snapshot(1)
			if !ok {
				t.Fatal("no snapshot for request 1")
			}
			if snap.BidEvents != tt.wantEvents || snap.BidDuplicates != tt.wantDuplicates {
				t.Errorf("events=%d duplicates=%d, want %d and %d",
					snap.BidEvents, snap.BidDuplicates, tt.wantEvents, tt.wantDuplicates)
			}
		})
	}
}
