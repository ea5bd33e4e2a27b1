package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrschumacher/lockflow/internal/config"
	"github.com/jrschumacher/lockflow/internal/testutil"
	"github.com/jrschumacher/lockflow/pkg/webauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedCoordinator(t *testing.T, cfg *config.Config) *webauth.Coordinator {
	t.Helper()
	c := webauth.NewCoordinator(webauth.Config{
		AuthorizeURL: cfg.AuthorizeURL,
		ClientID:     cfg.ClientID,
		RedirectURI:  "http://" + cfg.CallbackAddr + cfg.CallbackPath,
	}, webauth.LauncherFunc(func(context.Context, webauth.LaunchRequest) error { return nil }),
		webauth.CallbackFuncs{},
		webauth.WithNonceFunc(func() (string, error) { return "n", nil }),
	)
	_, err := c.Start(context.Background(), "github", webauth.StartOptions{})
	require.NoError(t, err)
	return c
}

func get(t *testing.T, h http.Handler, target string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func nextOutcome(t *testing.T, r *Receiver) webauth.Outcome {
	t.Helper()
	select {
	case o := <-r.Outcomes():
		return o
	case <-time.After(time.Second):
		t.Fatal("no outcome published")
		return nil
	}
}

func TestReceiver_QueryCallback(t *testing.T) {
	cfg := testutil.TestConfig()
	r := NewReceiver(cfg, startedCoordinator(t, cfg))

	res, body := get(t, r.Handler(), "/callback?access_token=AT&token_type=Bearer&state=n")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Signed in")

	assert.Equal(t, webauth.Success{AccessToken: "AT", TokenType: "Bearer"}, nextOutcome(t, r))
}

func TestReceiver_StateMismatch(t *testing.T) {
	cfg := testutil.TestConfig()
	r := NewReceiver(cfg, startedCoordinator(t, cfg))

	res, body := get(t, r.Handler(), "/callback?access_token=AT&state=other")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, webauth.DefaultMessages.InvalidState)
	assert.Equal(t, webauth.StateMismatch{Received: "other"}, nextOutcome(t, r))
}

func TestReceiver_FragmentRelay(t *testing.T) {
	cfg := testutil.TestConfig()
	r := NewReceiver(cfg, startedCoordinator(t, cfg))

	res, body := get(t, r.Handler(), "/callback")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `data-target="/callback/fragment"`)
	assert.Contains(t, body, "window.location.hash")
	select {
	case o := <-r.Outcomes():
		t.Fatalf("relay page must not complete the flow, got %v", o)
	default:
	}

	res, body = get(t, r.Handler(), "/callback/fragment?error=access_denied&state=n")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, webauth.DefaultMessages.AccessDenied)
	assert.Equal(t, webauth.ProviderDenied{}, nextOutcome(t, r))
}

func TestReceiver_EmptyRelayIsIgnored(t *testing.T) {
	cfg := testutil.TestConfig()
	c := startedCoordinator(t, cfg)
	r := NewReceiver(cfg, c)

	res, _ := get(t, r.Handler(), "/callback/fragment")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, webauth.Ignored{}, nextOutcome(t, r))

	_, ok := c.Pending(context.Background())
	assert.False(t, ok)
}

type refusingCompleter struct{}

func (refusingCompleter) CorrelationToken() string { return "other" }

func (refusingCompleter) Complete(context.Context, string, webauth.ResultCode, *url.URL) (webauth.Outcome, bool) {
	return webauth.Ignored{}, false
}

func TestReceiver_NotHandled(t *testing.T) {
	r := NewReceiver(testutil.TestConfig(), refusingCompleter{})

	res, _ := get(t, r.Handler(), "/callback?code=C")
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	select {
	case o := <-r.Outcomes():
		t.Fatalf("unexpected outcome %v", o)
	default:
	}
}

func TestReceiver_MethodNotAllowed(t *testing.T) {
	r := NewReceiver(testutil.TestConfig(), refusingCompleter{})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/callback?code=C", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestReceiver_Healthz(t *testing.T) {
	r := NewReceiver(testutil.TestConfig(), refusingCompleter{})

	res, body := get(t, r.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok\n", body)
}

func TestReceiver_Serve(t *testing.T) {
	r := NewReceiver(testutil.TestConfig(), refusingCompleter{})
	require.NoError(t, r.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	res, err := http.Get("http://" + r.Addr() + "/healthz")
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("receiver did not shut down")
	}
}

func TestReceiver_OverHTTP(t *testing.T) {
	cfg := testutil.TestConfig()
	r := NewReceiver(cfg, startedCoordinator(t, cfg))
	srv := testutil.TestServer(t, r.Handler())

	res, err := http.Get(srv.URL + "/callback?error=login_required&state=n")
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", res.Header.Get("Content-Type"))
	assert.Equal(t, webauth.ProviderError{Code: "login_required"}, nextOutcome(t, r))
}
