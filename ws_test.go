package orbex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbexchain/orbex-go/pkg/log"
)

// streamServer upgrades one connection, pushes frames on request, and keeps
// reading so subscribe/unsubscribe writes never block.
type streamServer struct {
	srv    *httptest.Server
	frames chan string
	subs   chan streamRequest
}

func newStreamServer(t *testing.T) *streamServer {
	t.Helper()
	s := &streamServer{
		frames: make(chan string, 16),
		subs:   make(chan streamRequest, 16),
	}
	upgrader := websocket.Upgrader{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for frame := range s.frames {
				if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
					return
				}
			}
		}()

		for {
			var req streamRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			s.subs <- req
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *streamServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *streamServer) expectRequest(t *testing.T) streamRequest {
	t.Helper()
	select {
	case req := <-s.subs:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream request")
		return streamRequest{}
	}
}

func expectFrame(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case frame, ok := <-ch:
		require.True(t, ok, "feed closed")
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestMarketStreamSubscribe(t *testing.T) {
	server := newStreamServer(t)
	stream := NewMarketStream(server.url(), log.NewNoopLogger(), nil)
	require.NoError(t, stream.Dial(context.Background()))
	t.Cleanup(func() { _ = stream.Close() })

	feed, err := stream.Subscribe(TickerChannel("BTC-USDT"))
	require.NoError(t, err)

	t.Run("Subscribe request reaches the venue", func(t *testing.T) {
		req := server.expectRequest(t)
		assert.Equal(t, "subscribe", req.Method)
		assert.Equal(t, "ticker.BTC-USDT", req.Subscription.Channel)
	})

	t.Run("Frames are routed by channel", func(t *testing.T) {
		// A frame for another channel must not reach this feed.
		server.frames <- `{"channel":"ticker.ETH-USDT","event":"payload","data":[{"lastPrice":"3000"}]}`
		server.frames <- `{"channel":"ticker.BTC-USDT","event":"payload","data":[{"lastPrice":"65000"}]}`

		frame := expectFrame(t, feed)
		assert.Contains(t, string(frame), "ticker.BTC-USDT")
	})

	t.Run("Resubscribing returns the same feed", func(t *testing.T) {
		again, err := stream.Subscribe(TickerChannel("BTC-USDT"))
		require.NoError(t, err)
		assert.Equal(t, feed, again)
	})

	t.Run("Unsubscribe closes the feed", func(t *testing.T) {
		require.NoError(t, stream.Unsubscribe(TickerChannel("BTC-USDT")))
		req := server.expectRequest(t)
		assert.Equal(t, "unsubscribe", req.Method)

		_, ok := <-feed
		assert.False(t, ok)
	})
}

func TestMarketStreamLifecycle(t *testing.T) {
	t.Run("Subscribe before dial", func(t *testing.T) {
		stream := NewMarketStream("ws://127.0.0.1:1", log.NewNoopLogger(), nil)
		_, err := stream.Subscribe("ticker.BTC-USDT")
		assert.ErrorIs(t, err, ErrStreamNotConnected)
	})

	t.Run("Double dial", func(t *testing.T) {
		server := newStreamServer(t)
		stream := NewMarketStream(server.url(), log.NewNoopLogger(), nil)
		require.NoError(t, stream.Dial(context.Background()))
		t.Cleanup(func() { _ = stream.Close() })

		assert.ErrorIs(t, stream.Dial(context.Background()), ErrAlreadyConnected)
	})

	t.Run("Close shuts feeds and rejects further use", func(t *testing.T) {
		server := newStreamServer(t)
		stream := NewMarketStream(server.url(), log.NewNoopLogger(), nil)
		require.NoError(t, stream.Dial(context.Background()))

		feed, err := stream.Subscribe(DepthChannel("BTC-USDT"))
		require.NoError(t, err)
		require.NoError(t, stream.Close())

		_, ok := <-feed
		assert.False(t, ok)

		_, err = stream.Subscribe(TickerChannel("BTC-USDT"))
		assert.ErrorIs(t, err, ErrStreamNotConnected)
		assert.NoError(t, stream.Close())
	})

	t.Run("Dial failure", func(t *testing.T) {
		stream := NewMarketStream("ws://127.0.0.1:1", log.NewNoopLogger(), nil)
		assert.Error(t, stream.Dial(context.Background()))
	})
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "ticker.BTC-USDT", TickerChannel("BTC-USDT"))
	assert.Equal(t, "kline.last.BTC-USDT.1m", KlineChannel("last", "BTC-USDT", "1m"))
	assert.Equal(t, "depth.BTC-USDT", DepthChannel("BTC-USDT"))
}
