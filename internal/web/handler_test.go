package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"example.com/pennyfarthing/internal/cards"
	"example.com/pennyfarthing/internal/rules"
	"example.com/pennyfarthing/internal/zone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type plain struct{}

func (plain) Name() string { return "plain" }

func (plain) RequestLayout() rules.Layout {
	return rules.Layout{Columns: 1, Rows: 1, Zones: map[string]rules.Rect{"main": {Col: 1, Row: 1, Width: 1, Height: 1}}}
}

func (plain) RequestDeal(*cards.Dealer, zone.Map) error { return nil }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := rules.NewRegistry(zaptest.NewLogger(t))
	require.NoError(t, rules.RegisterBuiltins(reg))
	require.NoError(t, reg.Register(plain{}))

	mux := http.NewServeMux()
	New(reg, zaptest.NewLogger(t)).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(b)
}

func TestGames(t *testing.T) {
	srv := newServer(t)

	status, body := get(t, srv.URL+"/games")
	require.Equal(t, http.StatusOK, status)

	var menu []rules.MenuEntry
	require.NoError(t, json.Unmarshal([]byte(body), &menu))
	assert.Equal(t, []rules.MenuEntry{
		{Name: "klondike", Title: "Klondike"},
		{Name: "plain", Title: "Plain"},
	}, menu)
}

func TestRulesPage(t *testing.T) {
	srv := newServer(t)

	status, body := get(t, srv.URL+"/rules/klondike")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<h1>Klondike</h1>")
	assert.Contains(t, body, "<li>Face-up runs move together.</li>")

	status, body = get(t, srv.URL+"/rules/template")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "If you pick up the joker you win the game.")

	status, body = get(t, srv.URL+"/rules/plain")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "This game has no written rules.")

	status, _ = get(t, srv.URL+"/rules/spider")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMenuPageAndHealth(t *testing.T) {
	srv := newServer(t)

	status, body := get(t, srv.URL+"/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<a href="/rules/klondike">Klondike</a>`)
	assert.NotContains(t, body, "/rules/template")

	status, body = get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)
}

func TestMenuPage_EscapesTitles(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, MenuPage([]rules.MenuEntry{{Name: "a&b", Title: "<A>"}}).Render(context.Background(), &sb))
	assert.Contains(t, sb.String(), `href="/rules/a&amp;b">&lt;A&gt;</a>`)
}
