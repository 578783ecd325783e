package peer

import (
	"bytes"
	"errors"
	"io"

	"twsclient/src/codec"
	"twsclient/src/protocol"
)

// RequestDecoder rebuilds client requests from raw outbound bytes fed in
// arbitrary chunks, starting with the handshake values. It is the peer half
// of a recording replay.
type RequestDecoder struct {
	buf           []byte
	stage         int
	serverVersion int

	ClientVersion int
	ClientID      int
	// Versions holds the last request version seen for each message type.
	Versions map[protocol.OutgoingMessage]int
}

const (
	stageClientVersion = iota
	stageAwaitServer
	stageClientID
	stageRequests
)

func NewRequestDecoder() *RequestDecoder {
	return &RequestDecoder{ClientID: -1, Versions: map[protocol.OutgoingMessage]int{}}
}

// SetServerVersion tells the decoder what the peer answered. It must be
// called before the bytes that follow the server reply are fed.
func (d *RequestDecoder) SetServerVersion(v int) {
	d.serverVersion = v
	if d.stage == stageAwaitServer {
		if v >= protocol.MinServerVerHandshakeClientID {
			d.stage = stageClientID
		} else {
			d.stage = stageRequests
		}
	}
}

// Feed appends p and returns every request that is now complete. Bytes of an
// incomplete trailing request are kept for the next call.
func (d *RequestDecoder) Feed(p []byte) ([]protocol.Request, error) {
	d.buf = append(d.buf, p...)
	var out []protocol.Request

	for len(d.buf) > 0 {
		r := codec.NewReader(bytes.NewReader(d.buf))
		switch d.stage {
		case stageClientVersion:
			d.ClientVersion = r.Int()
		case stageAwaitServer:
			return out, errors.New("peer: client sent data before the server version was known")
		case stageClientID:
			d.ClientID = r.Int()
		default:
			req, version, err := protocol.DecodeRequestVersion(r, d.serverVersion)
			if incomplete(err) {
				return out, nil
			}
			if err != nil {
				return out, err
			}
			d.Versions[req.Tag()] = version
			out = append(out, req)
		}
		if err := r.Err(); err != nil {
			if incomplete(err) {
				return out, nil
			}
			return out, err
		}
		if d.stage == stageClientVersion {
			d.stage = stageAwaitServer
		} else if d.stage == stageClientID {
			d.stage = stageRequests
		}
		d.buf = d.buf[r.BytesRead():]
	}
	return out, nil
}

// Pending reports how many buffered bytes belong to an unfinished request.
func (d *RequestDecoder) Pending() int { return len(d.buf) }

func incomplete(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
