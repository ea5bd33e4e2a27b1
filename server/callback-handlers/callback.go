package callback

import (
	"context"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/jrschumacher/lockflow/internal/config"
	"github.com/jrschumacher/lockflow/internal/logger"
	"github.com/jrschumacher/lockflow/internal/middleware"
	"github.com/jrschumacher/lockflow/internal/svrlib"
	"github.com/jrschumacher/lockflow/pkg/webauth"
	"github.com/jrschumacher/lockflow/server/pages"
)

const fragmentRoute = "/fragment"

// Completer is the part of webauth.Coordinator the handlers need.
type Completer interface {
	CorrelationToken() string
	Complete(ctx context.Context, token string, result webauth.ResultCode, uri *url.URL) (webauth.Outcome, bool)
}

type CallbackRouter struct {
	*svrlib.Router
	completer Completer
	messages  webauth.Messages
	onOutcome func(webauth.Outcome)
}

// RegisterRoutes registers the redirect endpoint at prefix and the fragment
// relay target below it. onOutcome receives every outcome the coordinator
// handled.
func RegisterRoutes(mux *http.ServeMux, prefix string, cfg *config.Config, completer Completer, onOutcome func(webauth.Outcome)) *CallbackRouter {
	router := &CallbackRouter{
		Router:    svrlib.NewRouter(mux, prefix, cfg),
		completer: completer,
		messages:  webauth.DefaultMessages,
		onOutcome: onOutcome,
	}
	getOnly := middleware.NewChain(middleware.GetOnly)
	mux.Handle(prefix, getOnly.ThenFunc(router.CallbackHandler))
	mux.Handle(router.Path(fragmentRoute), getOnly.ThenFunc(router.FragmentHandler))
	return router
}

// CallbackHandler handles the provider redirect. A redirect without a query
// may carry its result in the fragment, so the browser is asked to relay it.
func (rt *CallbackRouter) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.RawQuery == "" {
		templ.Handler(pages.FragmentRelay(rt.Path(fragmentRoute))).ServeHTTP(w, r)
		return
	}
	rt.complete(w, r)
}

// FragmentHandler receives the relayed fragment as a query string.
func (rt *CallbackRouter) FragmentHandler(w http.ResponseWriter, r *http.Request) {
	rt.complete(w, r)
}

func (rt *CallbackRouter) complete(w http.ResponseWriter, r *http.Request) {
	uri := &url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery}
	outcome, handled := rt.completer.Complete(r.Context(), rt.completer.CorrelationToken(), webauth.ResultOK, uri)
	if !handled {
		logger.Warn("Redirect not handled by the pending flow", "path", r.URL.Path)
		templ.Handler(pages.Result(rt.messages.ErrorTitle, rt.messages.GenericError, false),
			templ.WithStatus(http.StatusConflict)).ServeHTTP(w, r)
		return
	}

	if rt.onOutcome != nil {
		rt.onOutcome(outcome)
	}

	title, message, success := rt.describe(outcome)
	status := http.StatusOK
	if !success {
		status = http.StatusUnauthorized
	}
	templ.Handler(pages.Result(title, message, success), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (rt *CallbackRouter) describe(outcome webauth.Outcome) (title, message string, success bool) {
	switch outcome.(type) {
	case webauth.Success:
		return "Signed in", "Authentication completed.", true
	case webauth.Ignored:
		return "Sign in not completed", "No authentication result was received.", false
	}
	title, message, _, _ = rt.messages.ForOutcome(outcome)
	return title, message, false
}
