package webauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/pkg/browser"
)

// ResultCode is the host-level result of the browser interaction. It is
// independent of the provider's error key.
type ResultCode int

const (
	ResultOK ResultCode = iota
	ResultCanceled
)

func (c ResultCode) String() string {
	if c == ResultOK {
		return "ok"
	}
	return "canceled"
}

// LaunchRequest is what the coordinator hands to the browser capability.
type LaunchRequest struct {
	URI              *url.URL
	RedirectURI      string
	Connection       string
	CorrelationToken string
}

// Launcher displays the authorize URI to the user. The interaction ends
// later, out of band, with a call to Coordinator.Complete.
type Launcher interface {
	Launch(ctx context.Context, req LaunchRequest) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, req LaunchRequest) error

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context, req LaunchRequest) error {
	return f(ctx, req)
}

// openURL is replaced in tests.
var openURL = browser.OpenURL

// SystemBrowser opens the URI with the operating system's default browser.
type SystemBrowser struct{}

// Launch hands the URI to the platform opener. The browser outlives ctx.
func (SystemBrowser) Launch(_ context.Context, req LaunchRequest) error {
	if req.URI == nil {
		return errors.New("no authorize uri to open")
	}
	if err := openURL(req.URI.String()); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// PrintLauncher writes the URI for the user to open by hand.
type PrintLauncher struct {
	W io.Writer
}

// Launch prints the URI.
func (p PrintLauncher) Launch(_ context.Context, req LaunchRequest) error {
	_, err := fmt.Fprintf(p.W, "Open the following URL in your browser to continue:\n\n  %s\n\n", req.URI.String())
	return err
}
