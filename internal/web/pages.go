package web

import (
	"context"
	"io"

	"example.com/pennyfarthing/internal/rules"

	"github.com/a-h/templ"
)

// page wraps body in the shared document shell.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>`+
			templ.EscapeString(title)+`</title></head><body>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// RulesPage shows a ruleset's wording. The wording is ruleset-authored HTML
// and is written as is.
func RulesPage(title, wording string) templ.Component {
	return page(title+" rules", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<main class="rules"><h1>`+templ.EscapeString(title)+`</h1>`); err != nil {
			return err
		}
		body := templ.Raw(wording)
		if wording == "" {
			body = templ.Raw(`<p class="empty">This game has no written rules.</p>`)
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<p><a href="/">Back to the games</a></p></main>`)
		return err
	}))
}

// MenuPage lists the playable games with links to their rules.
func MenuPage(menu []rules.MenuEntry) templ.Component {
	return page("Solitaire", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<main class="menu"><h1>Solitaire</h1><ul>`); err != nil {
			return err
		}
		for _, e := range menu {
			if _, err := io.WriteString(w, `<li><a href="/rules/`+templ.EscapeString(e.Name)+`">`+
				templ.EscapeString(e.Title)+`</a></li>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ul></main>`)
		return err
	}))
}
