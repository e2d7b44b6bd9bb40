package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/pennyfarthing/internal/game"
	"example.com/pennyfarthing/internal/rules"
	"example.com/pennyfarthing/internal/zone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type stateView struct {
	Ruleset    string        `json:"ruleset"`
	Seed       uint32        `json:"seed"`
	Status     string        `json:"status"`
	Layout     *rules.Layout `json:"layout"`
	Zones      zone.Data     `json:"zones"`
	Animations bool          `json:"animations"`
	Won        bool          `json:"won"`
}

type fixture struct {
	hub *Hub
	srv *httptest.Server
	reg *rules.Registry
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	reg := rules.NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, rules.RegisterBuiltins(reg))

	hub := NewHub(reg, opts, zaptest.NewLogger(t))
	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return &fixture{hub: hub, srv: srv, reg: reg}
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(f.srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	b, err := encode(typ, payload)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, b))
}

// next reads frames until one of type typ arrives and decodes its payload
// into v.
func next(t *testing.T, conn *websocket.Conn, typ string, v any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		var m Msg
		require.NoError(t, wsjson.Read(ctx, conn, &m))
		if m.T != typ {
			continue
		}
		if v != nil {
			require.NoError(t, json.Unmarshal(m.M, v))
		}
		return
	}
}

func defaults() Options {
	return Options{DefaultRuleset: "klondike"}
}

func TestHub_GreetsWithMenuAndGame(t *testing.T) {
	f := newFixture(t, defaults())
	conn := f.dial(t)

	var games GamesReply
	next(t, conn, TypeGames, &games)
	assert.Equal(t, []rules.MenuEntry{{Name: "klondike", Title: "Klondike"}}, games.Games)

	var st stateView
	next(t, conn, TypeState, &st)
	assert.Equal(t, "klondike", st.Ruleset)
	assert.Equal(t, "dealt", st.Status)
	require.NotNil(t, st.Layout)
	assert.Equal(t, "Solved!", st.Layout.Victory.Text)
	assert.Len(t, st.Zones["tableau"].Ladder, 7)
	assert.Equal(t, 1, f.hub.Clients())
}

func TestHub_ReplayIsDeterministic(t *testing.T) {
	f := newFixture(t, defaults())
	conn := f.dial(t)
	next(t, conn, TypeState, nil)

	send(t, conn, TypeReplay, ReplayMsg{Seed: 42, Ruleset: "template"})
	var st stateView
	next(t, conn, TypeState, &st)

	local := game.New(f.reg, zaptest.NewLogger(t))
	_, err := local.Replay("template", 42)
	require.NoError(t, err)

	assert.Equal(t, "template", st.Ruleset)
	assert.Equal(t, uint32(42), st.Seed)
	assert.Equal(t, local.Snapshot().Zones, st.Zones)
}

func TestHub_DragAndDrop(t *testing.T) {
	f := newFixture(t, defaults())
	conn := f.dial(t)
	next(t, conn, TypeState, nil)

	send(t, conn, TypeReplay, ReplayMsg{Seed: 5, Ruleset: "template"})
	var before stateView
	next(t, conn, TypeState, &before)
	picked := before.Zones["tableau"].Ladder[2].Cards[0]
	oldHand := before.Zones["hand"].Stack.Cards[0]

	send(t, conn, TypeDrag, DragMsg{Zone: "tableau", Pile: 2, Index: -1})
	var drag DragReply
	next(t, conn, TypeDrag, &drag)
	require.True(t, drag.Allowed)

	send(t, conn, TypeDrop, DropMsg{Zone: "hand"})
	var after stateView
	next(t, conn, TypeState, &after)

	assert.Equal(t, picked, after.Zones["hand"].Stack.Cards[0])
	assert.Equal(t, oldHand, after.Zones["discard"].Stack.Cards[0])
	assert.Len(t, after.Zones["tableau"].Ladder[2].Cards, len(before.Zones["tableau"].Ladder[2].Cards)-1)
}

func TestHub_Errors(t *testing.T) {
	f := newFixture(t, defaults())
	conn := f.dial(t)
	next(t, conn, TypeState, nil)

	cases := []struct {
		name string
		raw  string
		code string
	}{
		{"not json", `{"t":`, CodeBadMessage},
		{"unknown type", `{"t":"shuffle"}`, CodeUnknownMessage},
		{"unknown zone", `{"t":"drag","m":{"zone":"nowhere","pile":0,"index":-1}}`, "UNKNOWN_ZONE"},
		{"unknown pile", `{"t":"drag","m":{"zone":"tableau","pile":9,"index":-1}}`, "UNKNOWN_PILE"},
		{"unknown ruleset", `{"t":"new_game","m":{"ruleset":"spider"}}`, "UNKNOWN_RULESET"},
		{"bad payload", `{"t":"replay","m":{"seed":"x"}}`, "MALFORMED_STATE"},
		{"bad state", `{"t":"load","m":{"state":{"stock":{"cards":[]}}}}`, "MALFORMED_STATE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(tc.raw)))

			var e ErrorReply
			next(t, conn, TypeError, &e)
			assert.Equal(t, tc.code, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestHub_LoadAndAnimations(t *testing.T) {
	f := newFixture(t, defaults())
	conn := f.dial(t)
	next(t, conn, TypeState, nil)

	seed := uint32(9)
	send(t, conn, TypeLoad, map[string]any{
		"ruleset": "template",
		"seed":    seed,
		"state": map[string]any{
			"hand": map[string]any{"isStack": true, "cards": []map[string]any{
				{"value": 5, "suit": "H", "up": true},
			}},
		},
	})
	var st stateView
	next(t, conn, TypeState, &st)
	assert.Equal(t, "template", st.Ruleset)
	assert.Equal(t, seed, st.Seed)
	assert.Equal(t, []zone.CardData{{Value: 5, Suit: "H", Up: true}}, st.Zones["hand"].Stack.Cards)
	assert.Empty(t, st.Zones["discard"].Stack.Cards)

	send(t, conn, TypeAnimations, AnimationsMsg{Enabled: true})
	next(t, conn, TypeState, &st)
	assert.True(t, st.Animations)
}

func TestHub_CancelDragThenDropIsIgnored(t *testing.T) {
	f := newFixture(t, defaults())
	conn := f.dial(t)
	var first stateView
	next(t, conn, TypeState, &first)

	send(t, conn, TypeDrag, DragMsg{Zone: "stock", Pile: 0, Index: -1})
	next(t, conn, TypeDrag, nil)
	send(t, conn, TypeCancelDrag, nil)
	send(t, conn, TypeDrop, DropMsg{Zone: "stock"})

	// a replay round-trips after the ignored drop, with the stock untouched
	send(t, conn, TypeReplay, ReplayMsg{Seed: first.Seed})
	var st stateView
	next(t, conn, TypeState, &st)
	assert.Equal(t, first.Zones, st.Zones)
}

func TestHub_AnnounceGames(t *testing.T) {
	f := newFixture(t, defaults())
	conn := f.dial(t)
	next(t, conn, TypeState, nil)

	require.NoError(t, f.reg.Register(rules.Klondike{}))
	f.hub.AnnounceGames()

	var games GamesReply
	next(t, conn, TypeGames, &games)
	assert.Equal(t, "Klondike", games.Games[0].Title)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	opts := defaults()
	opts.AllowOrigins = []string{"http://cards.example.com"}
	f := newFixture(t, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, res, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(f.srv.URL, "http")+"/ws", &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://evil.example.com"}},
	})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestHub_UnknownDefaultRuleset(t *testing.T) {
	f := newFixture(t, Options{DefaultRuleset: "spider"})
	conn := f.dial(t)

	var e ErrorReply
	next(t, conn, TypeError, &e)
	assert.Equal(t, "UNKNOWN_RULESET", e.Code)

	send(t, conn, TypeNewGame, NewGameMsg{Ruleset: "template"})
	var st stateView
	next(t, conn, TypeState, &st)
	assert.Equal(t, "template", st.Ruleset)
}
