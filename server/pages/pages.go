// Package pages renders the browser pages served by the loopback receiver.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const style = `body{font-family:system-ui,sans-serif;max-width:32rem;margin:4rem auto;padding:0 1rem;color:#222}` +
	`h1{font-size:1.4rem}.ok{color:#1a7f37}.err{color:#b42318}`

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title><style>%s</style></head>`,
			templ.EscapeString(title), style); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</html>`)
		return err
	})
}

// FragmentRelay forwards the URL fragment, which never reaches the server, to
// target as a query string.
func FragmentRelay(target string) templ.Component {
	return layout("Signing in", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<body data-target="%s"><p>Finishing sign in&hellip;</p>`+
			`<script>(function(){var t=document.body.getAttribute("data-target");`+
			`var h=window.location.hash;window.location.replace(t+"?"+(h.length>1?h.substring(1):""));})();</script>`+
			`<noscript><p class="err">JavaScript is required to finish signing in.</p></noscript></body>`,
			templ.EscapeString(target))
		return err
	}))
}

// Result shows the outcome of the flow.
func Result(title, message string, success bool) templ.Component {
	class := "err"
	if success {
		class = "ok"
	}
	return layout(title, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<body><h1 class="%s">%s</h1><p>%s</p><p>You can close this window.</p></body>`,
			class, templ.EscapeString(title), templ.EscapeString(message))
		return err
	}))
}
