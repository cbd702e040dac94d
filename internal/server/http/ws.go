package httpserver

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lazy-eggplant/vs.logger/internal/filter"
	"github.com/lazy-eggplant/vs.logger/pkg/vslog"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

var (
	errSlowConsumer     = errors.New("subscriber send buffer full")
	errSubscriberClosed = errors.New("subscriber closed")
)

// wsSubscriber adapts one websocket connection to the bridge's Conn
// interface. Envelopes are handed to a buffered channel consumed by a
// dedicated write goroutine, so a stalled peer fails fast instead of
// blocking the broadcast loop.
type wsSubscriber struct {
	conn *websocket.Conn
	flt  filter.Filter
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newWSSubscriber(conn *websocket.Conn, flt filter.Filter) *wsSubscriber {
	s := &wsSubscriber{
		conn: conn,
		flt:  flt,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	go s.writePump()
	return s
}

func (s *wsSubscriber) Send(env vslog.Envelope, raw []byte) error {
	if !s.flt.Match(env) {
		return nil
	}
	select {
	case <-s.done:
		return errSubscriberClosed
	default:
	}
	select {
	case s.send <- raw:
		return nil
	default:
		return errSlowConsumer
	}
}

func (s *wsSubscriber) Close() error {
	s.once.Do(func() { close(s.done) })
	return s.conn.Close()
}

func (s *wsSubscriber) writePump() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// Mark the subscriber dead so the next Send fails fast
				// instead of buffering into a channel nothing drains.
				s.once.Do(func() { close(s.done) })
				return
			}
		}
	}
}
