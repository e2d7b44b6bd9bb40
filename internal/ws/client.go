package ws

import (
	"context"
	"time"

	"example.com/pennyfarthing/internal/game"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const (
	pingInterval = 15 * time.Second
	writeTimeout = 10 * time.Second
	readLimit    = 256 << 10
)

// Client is one connected player with its own game. The controller is only
// touched from the client's reader goroutine.
type Client struct {
	id   string
	conn *websocket.Conn
	log  *zap.Logger

	// send carries replies and broadcasts; full queues drop frames.
	send chan []byte
	// state holds at most the latest snapshot; older ones are replaced.
	state chan []byte

	ctl   *game.Controller
	dirty bool
}

func newClient(conn *websocket.Conn, ctl *game.Controller, logger *zap.Logger) *Client {
	id := uuid.NewString()
	c := &Client{
		id:    id,
		conn:  conn,
		log:   logger.With(zap.String("client", id)),
		send:  make(chan []byte, 64),
		state: make(chan []byte, 1),
		ctl:   ctl,
	}
	ctl.Subscribe(func(game.Event) { c.dirty = true })
	return c
}

// queue hands msg to the writer without blocking.
func (c *Client) queue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		c.log.Warn("send queue full, dropping frame")
	}
}

// flush replaces any pending snapshot with the current one when the game
// changed since the last flush.
func (c *Client) flush() {
	if !c.dirty {
		return
	}
	c.dirty = false

	b, err := encode(TypeState, c.ctl.Snapshot())
	if err != nil {
		c.log.Error("encode state", zap.Error(err))
		return
	}
	select {
	case <-c.state:
	default:
	}
	c.state <- b
}

// writePump owns all writes to the connection until ctx is done.
func (c *Client) writePump(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	}()
	for {
		var msg []byte
		select {
		case <-ctx.Done():
			return
		case msg = <-c.send:
		case msg = <-c.state:
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				c.log.Debug("ping failed", zap.Error(err))
				return
			}
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := c.conn.Write(wctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			c.log.Debug("write failed", zap.Error(err))
			return
		}
	}
}
