package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFragmentRelay(t *testing.T) {
	var buf bytes.Buffer
	if err := FragmentRelay(`/callback/fragment"><script>`).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "window.location.hash") {
		t.Errorf("relay script missing: %s", out)
	}
	if strings.Contains(out, `fragment"><script>`) {
		t.Errorf("target not escaped: %s", out)
	}
}

func TestResult(t *testing.T) {
	var buf bytes.Buffer
	if err := Result("Signed in", "<b>hi</b>", true).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `class="ok"`) {
		t.Errorf("success class missing: %s", out)
	}
	if strings.Contains(out, "<b>hi</b>") {
		t.Errorf("message not escaped: %s", out)
	}
}
