package vslog

import (
	"net"
	"time"
)

// publishTimeout bounds a single datagram send so the recorder's critical
// section never waits on a slow receiver.
const publishTimeout = 5 * time.Millisecond

// publisher fires one datagram per event at the bridge's unixgram socket.
// The peer may be absent, appear later, or rebind its path at any time, so
// the connection is established lazily and redialed once on a failed send.
type publisher struct {
	raddr *net.UnixAddr
	conn  *net.UnixConn // nil until the peer was reachable at least once
}

func newPublisher(path string) *publisher {
	p := &publisher{raddr: &net.UnixAddr{Name: path, Net: "unixgram"}}
	if c, err := net.DialUnix("unixgram", nil, p.raddr); err == nil {
		p.conn = c
	}
	return p
}

// publish sends the event's envelope, best-effort. An absent or backlogged
// peer surfaces as an error here and is dropped by the caller. publish is
// only invoked under the recorder's lock.
func (p *publisher) publish(ev Event) error {
	payload, err := EncodeEnvelope(ev)
	if err != nil {
		return err
	}
	if p.conn == nil {
		c, err := net.DialUnix("unixgram", nil, p.raddr)
		if err != nil {
			return err
		}
		p.conn = c
	}
	_ = p.conn.SetWriteDeadline(time.Now().Add(publishTimeout))
	if _, err := p.conn.Write(payload); err == nil {
		return nil
	}
	// The bridge may have rebound its socket; redial once, then give up.
	_ = p.conn.Close()
	p.conn = nil
	c, err := net.DialUnix("unixgram", nil, p.raddr)
	if err != nil {
		return err
	}
	p.conn = c
	_ = p.conn.SetWriteDeadline(time.Now().Add(publishTimeout))
	_, err = p.conn.Write(payload)
	return err
}

func (p *publisher) close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
