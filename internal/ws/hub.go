// Package ws is the websocket boundary between browsers and their games.
// Each connection gets its own controller; the browser sends drag and drop
// input and receives full state snapshots to redraw from.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	apperrors "example.com/pennyfarthing/internal/errors"
	"example.com/pennyfarthing/internal/game"
	"example.com/pennyfarthing/internal/rules"
	"example.com/pennyfarthing/internal/zone"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Options configures a Hub.
type Options struct {
	AllowOrigins   []string
	DefaultRuleset string
	Animations     bool
}

// Hub accepts connections and fans broadcasts out to every client.
type Hub struct {
	registry *rules.Registry
	log      *zap.Logger
	opts     Options

	allowOrigins map[string]bool

	mu        sync.RWMutex
	clients   map[*Client]struct{}
	broadcast chan []byte
}

// NewHub returns a hub serving games from registry.
func NewHub(registry *rules.Registry, opts Options, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := map[string]bool{}
	for _, a := range opts.AllowOrigins {
		if a != "" {
			m[a] = true
		}
	}
	return &Hub{
		registry:     registry,
		log:          logger,
		opts:         opts,
		allowOrigins: m,
		clients:      map[*Client]struct{}{},
		broadcast:    make(chan []byte, 256),
	}
}

// Run delivers broadcasts until Close.
func (h *Hub) Run() {
	for msg := range h.broadcast {
		h.mu.RLock()
		for c := range h.clients {
			c.queue(msg)
		}
		h.mu.RUnlock()
	}
}

// Close stops Run. Broadcasting after Close panics.
func (h *Hub) Close() {
	close(h.broadcast)
}

// AnnounceGames sends the current games menu to every client.
func (h *Hub) AnnounceGames() {
	b, err := encode(TypeGames, h.games())
	if err != nil {
		h.log.Error("encode games", zap.Error(err))
		return
	}
	h.broadcast <- b
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) games() GamesReply {
	menu := h.registry.Menu()
	if menu == nil {
		menu = []rules.MenuEntry{}
	}
	return GamesReply{Games: menu}
}

// ServeWS upgrades the request and runs the client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" && !h.allowOrigins[origin] {
		http.Error(w, "forbidden origin", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Debug("websocket accept", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	ctl := game.New(h.registry, h.log)
	client := newClient(conn, ctl, h.log)

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	client.log.Info("client connected", zap.String("origin", origin))

	ctx, cancel := context.WithCancel(r.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		client.writePump(ctx)
	}()

	h.start(client)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		h.handle(client, data)
		client.flush()
	}

	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
	cancel()
	<-done
	client.log.Info("client disconnected")
}

// start greets a new client with the menu and a fresh game of the default
// ruleset.
func (h *Hub) start(c *Client) {
	if b, err := encode(TypeGames, h.games()); err == nil {
		c.queue(b)
	}
	c.ctl.ToggleAnimations(h.opts.Animations)
	if _, err := c.ctl.NewGame(h.opts.DefaultRuleset); err != nil {
		// nothing to draw until the client picks a game
		c.dirty = false
		h.replyError(c, err)
		return
	}
	c.flush()
}

func (h *Hub) handle(c *Client, data []byte) {
	var m Msg
	if err := json.Unmarshal(data, &m); err != nil {
		h.reply(c, TypeError, ErrorReply{Code: CodeBadMessage, Message: err.Error()})
		return
	}

	var err error
	switch m.T {
	case TypeNewGame:
		var p NewGameMsg
		if err = decode(m.M, &p); err == nil {
			_, err = c.ctl.NewGame(h.rulesetOrDefault(c, p.Ruleset))
		}

	case TypeReplay:
		var p ReplayMsg
		if err = decode(m.M, &p); err == nil {
			_, err = c.ctl.Replay(h.rulesetOrDefault(c, p.Ruleset), p.Seed)
		}

	case TypeDrag:
		var p DragMsg
		if err = decode(m.M, &p); err == nil {
			var ok bool
			if ok, err = c.ctl.BeginDrag(p.Zone, p.Pile, p.Index); err == nil {
				h.reply(c, TypeDrag, DragReply{Allowed: ok})
			}
		}

	case TypeDrop:
		var p DropMsg
		if err = decode(m.M, &p); err == nil {
			err = c.ctl.Drop(p.Zone, p.Pile)
		}

	case TypeCancelDrag:
		c.ctl.CancelDrag()

	case TypeAnimations:
		var p AnimationsMsg
		if err = decode(m.M, &p); err == nil {
			c.ctl.ToggleAnimations(p.Enabled)
		}

	case TypeLoad:
		var p LoadMsg
		if err = decode(m.M, &p); err == nil {
			err = h.load(c, p)
		}

	default:
		h.reply(c, TypeError, ErrorReply{Code: CodeUnknownMessage, Message: "unknown message type: " + m.T})
		return
	}

	if err != nil {
		h.replyError(c, err)
	}
}

func (h *Hub) load(c *Client, p LoadMsg) error {
	data, err := zone.Decode(p.State)
	if err != nil {
		return err
	}
	seed := c.ctl.Seed()
	if p.Seed != nil {
		seed = *p.Seed
	}
	return c.ctl.Restore(h.rulesetOrDefault(c, p.Ruleset), seed, data)
}

// rulesetOrDefault resolves an empty name to the active ruleset, or to the
// default one before the first game.
func (h *Hub) rulesetOrDefault(c *Client, name string) string {
	if name != "" {
		return name
	}
	if r := c.ctl.Ruleset(); r != nil {
		return r.Name()
	}
	return h.opts.DefaultRuleset
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.DataFormat("decode message", err)
	}
	return nil
}

func (h *Hub) reply(c *Client, t string, payload any) {
	b, err := encode(t, payload)
	if err != nil {
		c.log.Error("encode reply", zap.String("type", t), zap.Error(err))
		return
	}
	c.queue(b)
}

func (h *Hub) replyError(c *Client, err error) {
	code := string(apperrors.CodeOf(err))
	var ae *apperrors.Error
	switch {
	case errors.As(err, &ae):
		c.log.Info("request rejected", zap.String("code", code), zap.Error(err))
	default:
		code = CodeInternal
		c.log.Error("request failed", zap.Error(err))
	}
	h.reply(c, TypeError, ErrorReply{Code: code, Message: err.Error()})
}
