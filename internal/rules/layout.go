package rules

import (
	"sort"
	"strconv"

	apperrors "example.com/pennyfarthing/internal/errors"
)

// Rect is a zone's place on the grid. Col and Row are 1-based.
type Rect struct {
	Col    int `json:"col" yaml:"col"`
	Row    int `json:"row" yaml:"row"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Victory is shown by the view once the game is won.
type Victory struct {
	Text  string `json:"text" yaml:"text"`
	Color string `json:"color" yaml:"color"`
	Card  string `json:"card" yaml:"card"`
}

// Layout is the grid a ruleset asks the view for.
type Layout struct {
	Columns int             `json:"columns" yaml:"columns"`
	Rows    int             `json:"rows" yaml:"rows"`
	Zones   map[string]Rect `json:"zones" yaml:"zones"`
	Victory *Victory        `json:"victory,omitempty" yaml:"victory,omitempty"`
}

// ZoneNames returns the layout's zone names, sorted.
func (l Layout) ZoneNames() []string {
	out := make([]string, 0, len(l.Zones))
	for name := range l.Zones {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validate checks that the grid is non-empty and every zone fits inside it.
func (l Layout) Validate() error {
	if l.Columns <= 0 || l.Rows <= 0 {
		return apperrors.Configuration(apperrors.CodeInvalidLayout,
			"layout needs positive columns and rows", nil)
	}
	for _, name := range l.ZoneNames() {
		r := l.Zones[name]
		if name == "" || r.Col < 1 || r.Row < 1 || r.Width < 1 || r.Height < 1 ||
			r.Col+r.Width-1 > l.Columns || r.Row+r.Height-1 > l.Rows {
			return apperrors.Configuration(apperrors.CodeInvalidLayout,
				"zone "+strconv.Quote(name)+" does not fit the grid",
				map[string]string{"zone": name})
		}
	}
	return nil
}
