// Package web serves the games menu, the rules pages and the health check.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "example.com/pennyfarthing/internal/errors"
	"example.com/pennyfarthing/internal/rules"

	"github.com/a-h/templ"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Handler serves the read-only HTTP surface around the registry.
type Handler struct {
	registry *rules.Registry
	log      *zap.Logger
}

// New returns a handler over registry.
func New(registry *rules.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registry: registry, log: logger}
}

// Register mounts the routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.menuPage)
	mux.HandleFunc("GET /games", h.games)
	mux.HandleFunc("GET /rules/{name}", h.rulesPage)
	mux.HandleFunc("GET /health", health)
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) games(w http.ResponseWriter, _ *http.Request) {
	menu := h.registry.Menu()
	if menu == nil {
		menu = []rules.MenuEntry{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(menu); err != nil {
		h.log.Warn("write games menu", zap.Error(err))
	}
}

func (h *Handler) menuPage(w http.ResponseWriter, r *http.Request) {
	templ.Handler(MenuPage(h.registry.Menu())).ServeHTTP(w, r)
}

func (h *Handler) rulesPage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rs, err := h.registry.Lookup(name)
	if err != nil {
		if errors.Is(err, &apperrors.Error{Code: apperrors.CodeUnknownRuleset}) {
			http.NotFound(w, r)
			return
		}
		h.log.Error("rules page", zap.String("ruleset", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	wording, _ := rules.Wording(rs)
	title := cases.Title(language.English).String(rs.Name())
	templ.Handler(RulesPage(title, wording)).ServeHTTP(w, r)
}
