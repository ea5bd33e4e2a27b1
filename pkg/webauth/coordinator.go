// Package webauth coordinates browser delegated OAuth2/OIDC logins: it builds
// the authorize URI, hands it to a browser and classifies the redirect that
// eventually comes back.
//
// A Coordinator holds a single pending flow. Starting a second flow before
// the first completes replaces the first flow's nonce, so a late redirect
// from the first flow is classified as StateMismatch. Callers must not start
// overlapping flows.
package webauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	correlationPrefix = "webauth:"
	errExchangeFailed = "exchange_failed"
)

// Callback receives the result of a completed flow. Ignored outcomes are not
// reported.
type Callback interface {
	OnSuccess(s Success)
	OnFailure(title, message string, cause error)
}

// CallbackFuncs adapts two functions to Callback. Nil functions are skipped.
type CallbackFuncs struct {
	Success func(s Success)
	Failure func(title, message string, cause error)
}

func (f CallbackFuncs) OnSuccess(s Success) {
	if f.Success != nil {
		f.Success(s)
	}
}

func (f CallbackFuncs) OnFailure(title, message string, cause error) {
	if f.Failure != nil {
		f.Failure(title, message, cause)
	}
}

// Config identifies the client and the identity provider.
type Config struct {
	AuthorizeURL string
	ClientID     string
	Provider     ProviderKind
	NonceSource  NonceSource

	// RedirectURI replaces the a0{client}://{host}/authorize template, e.g.
	// with a loopback address.
	RedirectURI string

	// CorrelationToken tags the flows of this coordinator. Completions
	// carrying another token are not handled. Defaults to
	// "webauth:" + lowercased client id.
	CorrelationToken string

	// Telemetry, when set, is sent as auth0Client unless the caller passes
	// its own value.
	Telemetry *Telemetry
}

// Handle is returned by Start and identifies the flow to the host.
type Handle struct {
	CorrelationToken string
	URI              *url.URL
	Connection       string
	Nonce            string
}

// StartOptions are the per call inputs of Start.
type StartOptions struct {
	Parameters map[string]string
	// Username, when set, is sent as login_hint (the part before '@').
	Username string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithStore replaces the in-memory pending slot.
func WithStore(s PendingStore) Option {
	return func(c *Coordinator) { c.store = s }
}

// WithExchanger sets the code exchanger used by the PKCE provider.
func WithExchanger(e CodeExchanger) Option {
	return func(c *Coordinator) { c.exchanger = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

func WithMessages(m Messages) Option {
	return func(c *Coordinator) { c.messages = m }
}

// WithParameters sets extra authorize parameters sent with every flow. Start
// parameters take precedence.
func WithParameters(params map[string]string) Option {
	return func(c *Coordinator) {
		c.params = make(map[string]string, len(params))
		for k, v := range params {
			c.params[k] = v
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithNonceFunc replaces the configured NonceSource.
func WithNonceFunc(fn func() (string, error)) Option {
	return func(c *Coordinator) { c.nonce = fn }
}

// Coordinator drives one browser delegated flow at a time.
type Coordinator struct {
	cfg       Config
	launcher  Launcher
	callback  Callback
	store     PendingStore
	exchanger CodeExchanger
	log       *slog.Logger
	messages  Messages
	params    map[string]string
	now       func() time.Time
	nonce     func() (string, error)

	mu sync.Mutex
}

// NewCoordinator returns a coordinator. Configuration problems are reported
// by Start, before any browser hand-off.
func NewCoordinator(cfg Config, launcher Launcher, callback Callback, opts ...Option) *Coordinator {
	if cfg.Provider == "" {
		cfg.Provider = ProviderImplicit
	}
	if cfg.NonceSource == "" {
		cfg.NonceSource = NonceUUID
	}
	if cfg.CorrelationToken == "" {
		cfg.CorrelationToken = correlationPrefix + strings.ToLower(cfg.ClientID)
	}
	c := &Coordinator{
		cfg:      cfg,
		launcher: launcher,
		callback: callback,
		store:    NewMemoryPendingStore(),
		log:      slog.Default(),
		messages: DefaultMessages,
		now:      time.Now,
		nonce:    cfg.NonceSource.Generate,
	}
	if c.callback == nil {
		c.callback = CallbackFuncs{}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CorrelationToken returns the token completions must carry.
func (c *Coordinator) CorrelationToken() string {
	return c.cfg.CorrelationToken
}

// Start issues a fresh nonce, records the pending flow and launches the
// browser. A configuration error is reported to OnFailure and returned; the
// launcher is not called in that case.
func (c *Coordinator) Start(ctx context.Context, connection string, opts StartOptions) (Handle, error) {
	h, req, err := c.prepare(ctx, connection, opts)
	if err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			message := c.messages.GenericError
			if errors.Is(err, ErrInvalidAuthorizeURL) {
				message = c.messages.InvalidAuthorizeURL
			}
			c.dispatchFailure(c.messages.ErrorTitle, message, err)
		}
		return Handle{}, err
	}

	if err := c.launch(ctx, req); err != nil {
		if delErr := c.store.Delete(ctx, c.cfg.CorrelationToken); delErr != nil {
			c.log.Error("failed to clear pending authorization", "error", delErr)
		}
		return Handle{}, fmt.Errorf("failed to launch browser: %w", err)
	}
	return h, nil
}

// prepare records the pending flow. The launcher runs after the slot is
// released so a host may complete the flow from inside Launch.
func (c *Coordinator) prepare(ctx context.Context, connection string, opts StartOptions) (Handle, LaunchRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	redirectURI, err := c.redirectURI()
	if err != nil {
		c.log.Warn("cannot start web authentication", "error", err)
		return Handle{}, LaunchRequest{}, err
	}
	nonce, err := c.nonce()
	if errors.Is(err, ErrUnknownNonceSource) {
		return Handle{}, LaunchRequest{}, &ConfigurationError{Field: "nonce_source", Err: err}
	}
	if err != nil {
		return Handle{}, LaunchRequest{}, err
	}

	pending := PendingAuthorization{
		Nonce:       nonce,
		Connection:  connection,
		Provider:    c.cfg.Provider,
		RedirectURI: redirectURI,
		CreatedAt:   c.now().UTC(),
	}
	protocol := ProtocolParams{
		State:       nonce,
		Connection:  connection,
		ClientID:    c.cfg.ClientID,
		RedirectURI: redirectURI,
	}
	c.cfg.Provider.prepare(&pending, &protocol)

	extra, err := c.extraParameters(opts)
	if err != nil {
		return Handle{}, LaunchRequest{}, err
	}
	uri, err := AuthorizationRequest{
		AuthorizeEndpoint: c.cfg.AuthorizeURL,
		Protocol:          protocol,
		Extra:             extra,
	}.Build()
	if err != nil {
		return Handle{}, LaunchRequest{}, err
	}

	if err := c.store.Save(ctx, c.cfg.CorrelationToken, pending); err != nil {
		return Handle{}, LaunchRequest{}, fmt.Errorf("failed to save pending authorization: %w", err)
	}
	c.log.Debug("starting web authentication",
		"connection", connection,
		"provider", string(c.cfg.Provider),
		"state", nonce)

	h := Handle{
		CorrelationToken: c.cfg.CorrelationToken,
		URI:              uri,
		Connection:       connection,
		Nonce:            nonce,
	}
	req := LaunchRequest{
		URI:              uri,
		RedirectURI:      redirectURI,
		Connection:       connection,
		CorrelationToken: c.cfg.CorrelationToken,
	}
	return h, req, nil
}

func (c *Coordinator) redirectURI() (string, error) {
	if _, err := ParseAuthorizeEndpoint(c.cfg.AuthorizeURL); err != nil {
		return "", err
	}
	if c.cfg.ClientID == "" {
		return "", &ConfigurationError{Field: KeyClientID, Err: ErrMissingClientID}
	}
	if c.cfg.RedirectURI != "" {
		return c.cfg.RedirectURI, nil
	}
	return RedirectURI(c.cfg.ClientID, c.cfg.AuthorizeURL)
}

func (c *Coordinator) extraParameters(opts StartOptions) (map[string]string, error) {
	extra := make(map[string]string, len(c.params)+len(opts.Parameters)+2)
	if c.cfg.Telemetry != nil {
		info, err := c.cfg.Telemetry.Encode()
		if err != nil {
			return nil, err
		}
		extra[KeyClientInfo] = info
	}
	if opts.Username != "" {
		extra[KeyLoginHint] = LoginHint(opts.Username)
	}
	for k, v := range c.params {
		extra[k] = v
	}
	for k, v := range opts.Parameters {
		extra[k] = v
	}
	return extra, nil
}

func (c *Coordinator) launch(ctx context.Context, req LaunchRequest) (err error) {
	if c.launcher == nil {
		return errors.New("no browser launcher configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("launcher panic: %v", r)
		}
	}()
	return c.launcher.Launch(ctx, req)
}

// Complete resolves the pending flow with the redirect the host received.
// It reports false when the completion belongs to someone else (token
// mismatch or no redirect URI); the pending flow is kept in that case.
// Every other completion clears the pending flow and returns a terminal
// outcome, which is also delivered to the Callback unless it is Ignored.
func (c *Coordinator) Complete(ctx context.Context, token string, result ResultCode, uri *url.URL) (Outcome, bool) {
	if token != c.cfg.CorrelationToken || uri == nil {
		return Ignored{}, false
	}
	outcome, cause := c.resolve(ctx, result, uri)
	c.dispatch(outcome, cause)
	return outcome, true
}

func (c *Coordinator) resolve(ctx context.Context, result ResultCode, uri *url.URL) (outcome Outcome, cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("recovered panic while completing web authentication", "panic", r)
			outcome, cause = Ignored{}, nil
		}
	}()

	pending, err := c.store.Load(ctx, c.cfg.CorrelationToken)
	if err != nil && !errors.Is(err, ErrPendingNotFound) {
		c.log.Error("failed to load pending authorization", "error", err)
	}
	if err := c.store.Delete(ctx, c.cfg.CorrelationToken); err != nil {
		c.log.Error("failed to clear pending authorization", "error", err)
	}

	if result == ResultCanceled {
		c.log.Info("web authentication canceled", "connection", pending.Connection)
		return Ignored{}, nil
	}

	values := ParseCallback(uri)
	outcome = Classify(pending.Nonce, values)
	switch o := outcome.(type) {
	case ProviderDenied, ProviderError:
		c.log.Warn("identity provider returned an error", "error", values[KeyError])
	case StateMismatch:
		c.log.Warn("received state doesn't match")
		c.log.Debug("state mismatch", "expected", pending.Nonce, "received", o.Received)
	case Success:
		if pending.Provider == ProviderPKCE && o.Code() != "" {
			return c.exchange(ctx, o.Code(), pending)
		}
		c.log.Info("authenticated using web flow", "connection", pending.Connection)
	}
	return outcome, nil
}

func (c *Coordinator) exchange(ctx context.Context, code string, pending PendingAuthorization) (Outcome, error) {
	if c.exchanger == nil {
		return ProviderError{Code: errExchangeFailed}, &ExchangeError{Err: errors.New("no code exchanger configured")}
	}
	s, err := c.exchanger.Exchange(ctx, code, pending)
	if err != nil {
		c.log.Error("failed to exchange authorization code", "error", err)
		var exErr *ExchangeError
		if !errors.As(err, &exErr) {
			err = &ExchangeError{Err: err}
		}
		return ProviderError{Code: errExchangeFailed}, err
	}
	c.log.Info("authenticated using web flow", "connection", pending.Connection, "grant", "authorization_code")
	return s, nil
}

func (c *Coordinator) dispatch(outcome Outcome, cause error) {
	if cause != nil {
		c.dispatchFailure(c.messages.ErrorTitle, c.messages.AccessDenied, cause)
		return
	}
	if s, ok := outcome.(Success); ok {
		c.safely(func() { c.callback.OnSuccess(s) })
		return
	}
	if title, message, err, ok := c.messages.ForOutcome(outcome); ok {
		c.dispatchFailure(title, message, err)
	}
}

func (c *Coordinator) dispatchFailure(title, message string, cause error) {
	c.safely(func() { c.callback.OnFailure(title, message, cause) })
}

func (c *Coordinator) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("recovered panic in web authentication callback", "panic", r)
		}
	}()
	fn()
}

// Stop discards the pending flow. A redirect arriving afterwards is
// classified against an empty nonce.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Delete(ctx, c.cfg.CorrelationToken)
}

// Pending returns the flow waiting for completion, if any.
func (c *Coordinator) Pending(ctx context.Context) (PendingAuthorization, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.store.Load(ctx, c.cfg.CorrelationToken)
	if err != nil {
		return PendingAuthorization{}, false
	}
	return p, true
}
