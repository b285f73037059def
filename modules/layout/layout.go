// Package layout renders the document shell shared by every page.
package layout

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/paymybuddy/pkg/authguard"
	"github.com/dmitrymomot/paymybuddy/pkg/ssr"
)

// ScriptURL is where the DataStar client bundle is served from.
var ScriptURL = "/static/datastar.js"

// Page wraps body in the document shell. When the render context carries a
// guard, the navigation shows its user and the session is hydrated for the
// client, so a tab opened from this page starts from the same state.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		guard, _ := authguard.FromContext(ctx)

		if _, err := fmt.Fprintf(w, `<!doctype html><html><head><meta charset="utf-8"><title>%s | PayMyBuddy</title>`+
			`<script type="module" src="%s"></script></head><body>`,
			templ.EscapeString(title), templ.EscapeString(ScriptURL)); err != nil {
			return err
		}
		if err := nav(guard).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div id="toast-container"></div><main id="page">`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</main>`); err != nil {
			return err
		}
		if guard != nil {
			if err := ssr.Hydration(guard.Serialize()).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func nav(guard *authguard.Guard) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if guard == nil || !guard.Authenticated() {
			_, err := io.WriteString(w, `<nav><a href="/login">Log in</a> <a href="/register">Sign up</a></nav>`)
			return err
		}
		_, err := fmt.Fprintf(w, `<nav><a href="/summary">Summary</a> <a href="/contacts">Contacts</a> <a href="/transfer">Transfer</a> <a href="/add-money">Add money</a>`+
			`<span class="user">%s</span><form method="post" action="/logout"><button type="submit">Log out</button></form></nav>`,
			templ.EscapeString(guard.User().Name))
		return err
	})
}

// Message renders a paragraph of class with text, or nothing for empty text.
func Message(class, text string) string {
	if text == "" {
		return ""
	}
	return fmt.Sprintf(`<p class="%s">%s</p>`, class, templ.EscapeString(text))
}

// Toast renders the error toast pushed by the error handler to DataStar
// requests.
func Toast(message, kind string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="toast toast-%s" role="alert">%s</div>`,
			templ.EscapeString(kind), templ.EscapeString(message))
		return err
	})
}

// ErrorPage renders a full page error.
func ErrorPage(status int, message, requestID string) templ.Component {
	return Page("Error", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<section class="error"><h1>%d</h1><p>%s</p><small>%s</small></section>`,
			status, templ.EscapeString(message), templ.EscapeString(requestID))
		return err
	}))
}
