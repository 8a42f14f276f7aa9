package orbex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orbexchain/orbex-go/pkg/log"
)

const (
	streamHandshakeTimeout = 5 * time.Second
	streamPingInterval     = 15 * time.Second
	// streamChanSize is the per-subscription buffer. When a subscriber falls
	// behind, frames are dropped rather than stalling the read loop.
	streamChanSize = 100
)

var (
	// ErrStreamNotConnected is returned when a subscription is attempted on
	// a stream that has not been dialed or has been closed.
	ErrStreamNotConnected = errors.New("market stream is not connected")
	// ErrAlreadyConnected is returned by Dial on a connected stream.
	ErrAlreadyConnected = errors.New("market stream is already connected")
)

// TickerChannel names the ticker stream of an exchange.
func TickerChannel(exchangeID string) string {
	return "ticker." + exchangeID
}

// KlineChannel names a kline stream.
func KlineChannel(priceType, exchangeID, klineType string) string {
	return fmt.Sprintf("kline.%s.%s.%s", priceType, exchangeID, klineType)
}

// DepthChannel names the order book depth stream of an exchange.
func DepthChannel(exchangeID string) string {
	return "depth." + exchangeID
}

type streamSubscription struct {
	Channel string `json:"channel"`
}

type streamRequest struct {
	Method       string             `json:"method"`
	Subscription streamSubscription `json:"subscription"`
}

// streamFrame is the part of a pushed frame the stream inspects for routing.
// Payloads are delivered raw; parsing market data is the caller's business.
type streamFrame struct {
	Channel string `json:"channel"`
	Event   string `json:"event,omitempty"`
}

// MarketStream is a subscription-based feed of raw market data frames over a
// single WebSocket connection. Frames are fanned out to subscribers by
// channel name. Writes are serialized; the read loop never blocks on a slow
// subscriber.
type MarketStream struct {
	url     string
	lg      log.Logger
	metrics *Metrics

	mu     sync.Mutex
	conn   *websocket.Conn
	subs   map[string]chan []byte
	done   chan struct{}
	closed bool

	writeMu sync.Mutex
}

// NewMarketStream builds a stream for the given ws:// or wss:// URL.
// Call Dial before subscribing.
func NewMarketStream(url string, lg log.Logger, metrics *Metrics) *MarketStream {
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	return &MarketStream{
		url:     url,
		lg:      lg.NewSystem("market-stream"),
		metrics: metrics,
		subs:    make(map[string]chan []byte),
	}
}

// Dial establishes the WebSocket connection and starts the read and ping
// loops. The context bounds the handshake only.
func (s *MarketStream) Dial(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamNotConnected
	}
	if s.conn != nil {
		return ErrAlreadyConnected
	}

	dialer := websocket.Dialer{
		HandshakeTimeout:  streamHandshakeTimeout,
		EnableCompression: true,
	}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial market stream: %w", err)
	}

	s.conn = conn
	s.done = make(chan struct{})
	s.metrics.recordStreamConnect()
	s.lg.Info("market stream connected", "url", s.url)

	go s.readLoop(conn)
	go s.pingLoop(conn, s.done)
	return nil
}

// Subscribe registers for a channel and returns the frame feed. Subscribing
// twice to the same channel returns the same feed. Frames are dropped when
// the feed buffer is full.
func (s *MarketStream) Subscribe(channel string) (<-chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.closed {
		return nil, ErrStreamNotConnected
	}
	if ch, ok := s.subs[channel]; ok {
		return ch, nil
	}

	if err := s.writeJSON(streamRequest{
		Method:       "subscribe",
		Subscription: streamSubscription{Channel: channel},
	}); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	ch := make(chan []byte, streamChanSize)
	s.subs[channel] = ch
	s.metrics.recordStreamSubscriptions(1)
	return ch, nil
}

// Unsubscribe tells the venue to stop pushing the channel and closes its
// feed.
func (s *MarketStream) Unsubscribe(channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil || s.closed {
		return ErrStreamNotConnected
	}
	ch, ok := s.subs[channel]
	if !ok {
		return nil
	}

	err := s.writeJSON(streamRequest{
		Method:       "unsubscribe",
		Subscription: streamSubscription{Channel: channel},
	})

	delete(s.subs, channel)
	close(ch)
	s.metrics.recordStreamSubscriptions(-1)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", channel, err)
	}
	return nil
}

// Close tears the connection down and closes every subscription feed.
func (s *MarketStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = make(map[string]chan []byte)
	if s.done != nil {
		close(s.done)
	}
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// readLoop reads frames and routes them by channel name. It owns connection
// teardown on read failure.
func (s *MarketStream) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				s.lg.Error("market stream read failed", "error", err)
				_ = s.Close()
			}
			return
		}
		s.metrics.recordStreamMessage()

		var frame streamFrame
		if err := json.Unmarshal(msg, &frame); err != nil || frame.Channel == "" {
			continue
		}

		// Non-blocking send under the mutex: Unsubscribe closes feeds under
		// the same lock, so a send can never hit a closed channel.
		s.mu.Lock()
		ch, ok := s.subs[frame.Channel]
		if ok {
			select {
			case ch <- msg:
			default:
				s.lg.Warn("subscription feed full, dropping frame", "channel", frame.Channel)
			}
		}
		s.mu.Unlock()
	}
}

// pingLoop keeps the connection alive. Write failures are left for the read
// loop to observe and tear down.
func (s *MarketStream) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				s.lg.Warn("market stream ping failed", "error", err)
				return
			}
		}
	}
}

// writeJSON serializes WebSocket writes. Callers hold s.mu; the separate
// write mutex also covers the ping loop, which does not.
func (s *MarketStream) writeJSON(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}
