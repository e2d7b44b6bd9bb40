package rules

import (
	"sort"
	"strings"
	"sync"

	apperrors "example.com/pennyfarthing/internal/errors"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateName is the example ruleset, hidden from the games menu.
const TemplateName = "template"

// Registry is the directory of rulesets keyed by name. It is safe for
// concurrent use; sessions read it while scripts may still be loading.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Ruleset
	log   *zap.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{games: map[string]Ruleset{}, log: logger}
}

// Register adds r under r.Name(). A later registration with the same name
// replaces the earlier one, which is closed if it is a Closer. Sessions still
// holding a closed ruleset get errors from its hooks until they re-deal.
func (g *Registry) Register(r Ruleset) error {
	name := strings.TrimSpace(r.Name())
	if name == "" {
		return apperrors.Configuration(apperrors.CodeUnknownRuleset, "ruleset has no name", nil)
	}
	if err := r.RequestLayout().Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	old, replaced := g.games[name]
	g.games[name] = r
	g.mu.Unlock()

	g.log.Info("ruleset registered", zap.String("ruleset", name), zap.Bool("replaced", replaced))
	if c, ok := old.(Closer); ok && old != r {
		c.Close()
	}
	return nil
}

// Lookup returns the ruleset registered under name.
func (g *Registry) Lookup(name string) (Ruleset, error) {
	g.mu.RLock()
	r, ok := g.games[name]
	g.mu.RUnlock()
	if !ok {
		return nil, apperrors.Configuration(apperrors.CodeUnknownRuleset,
			"unknown ruleset: "+name, map[string]string{"ruleset": name})
	}
	return r, nil
}

// Names returns every registered name, sorted.
func (g *Registry) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.games))
	for name := range g.games {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// MenuEntry is one selectable game.
type MenuEntry struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Menu lists the playable rulesets with display titles, skipping the
// template.
func (g *Registry) Menu() []MenuEntry {
	caser := cases.Title(language.English)
	var out []MenuEntry
	for _, name := range g.Names() {
		if name == TemplateName {
			continue
		}
		out = append(out, MenuEntry{Name: name, Title: caser.String(name)})
	}
	return out
}

// RegisterBuiltins adds the games that ship with the engine.
func RegisterBuiltins(g *Registry) error {
	for _, r := range []Ruleset{Template{}, Klondike{}} {
		if err := g.Register(r); err != nil {
			return err
		}
	}
	return nil
}
