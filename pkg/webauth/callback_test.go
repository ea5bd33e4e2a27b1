package webauth

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCallbackString(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want CallbackValues
	}{
		{
			name: "query",
			uri:  "https://x/callback?access_token=AT&state=abc123",
			want: CallbackValues{"access_token": "AT", "state": "abc123"},
		},
		{
			name: "fragment when query is empty",
			uri:  "a0client://tenant.auth0.com/authorize#id_token=IT&token_type=Bearer",
			want: CallbackValues{"id_token": "IT", "token_type": "Bearer"},
		},
		{
			name: "query preferred over fragment",
			uri:  "https://x/callback?code=C#access_token=AT",
			want: CallbackValues{"code": "C"},
		},
		{
			name: "malformed entries dropped",
			uri:  "https://x/callback?flag&a=b=c&&ok=1",
			want: CallbackValues{"ok": "1"},
		},
		{
			name: "last duplicate wins",
			uri:  "https://x/callback?state=first&state=second",
			want: CallbackValues{"state": "second"},
		},
		{
			name: "empty value kept",
			uri:  "https://x/callback?refresh_token=",
			want: CallbackValues{"refresh_token": ""},
		},
		{
			name: "percent decoded",
			uri:  "https://x/callback?error_description=User%20did%20not%20authorize&error=access_denied",
			want: CallbackValues{"error_description": "User did not authorize", "error": "access_denied"},
		},
		{
			name: "undecodable value kept raw",
			uri:  "https://x/callback?state=%zz",
			want: CallbackValues{"state": "%zz"},
		},
		{
			name: "undecodable fragment value kept raw",
			uri:  "a0client://tenant.auth0.com/authorize#access_token=AT&state=%zz",
			want: CallbackValues{"access_token": "AT", "state": "%zz"},
		},
		{
			name: "bad path escape still reads query",
			uri:  "https://x/%zz?error=access_denied#state=s",
			want: CallbackValues{"error": "access_denied"},
		},
		{
			name: "bad escape with empty query reads fragment",
			uri:  "https://x/%zz?#code=C",
			want: CallbackValues{"code": "C"},
		},
		{name: "no query or fragment", uri: "https://x/callback", want: CallbackValues{}},
		{name: "empty query and fragment", uri: "https://x/callback?#", want: CallbackValues{}},
		{name: "empty string", uri: "", want: CallbackValues{}},
		{name: "unparsable", uri: "%gh&%ij", want: CallbackValues{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCallbackString(tt.uri)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, ParseCallbackString(tt.uri), "parse must be idempotent")
		})
	}
}

func TestParseCallback_Nil(t *testing.T) {
	assert.Equal(t, CallbackValues{}, ParseCallback(nil))
}

func TestParseCallback_Total(t *testing.T) {
	inputs := []string{"&&&", "===", "=", "a", "a=&=b", "%", "#", "?", "?&#&", "https://x/?\x00=1"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { ParseCallbackString(in) }, in)
	}

	u := &url.URL{Fragment: "a=1&b"}
	assert.Equal(t, CallbackValues{"a": "1"}, ParseCallback(u))
}

func TestCallbackValues_Has(t *testing.T) {
	v := CallbackValues{"state": ""}
	assert.True(t, v.Has("state"))
	assert.False(t, v.Has("error"))
}

func TestRedirectURL(t *testing.T) {
	u := RedirectURL("https://x/callback?state=s")
	assert.Equal(t, "/callback", u.Path)
	assert.Equal(t, "state=s", u.RawQuery)

	u = RedirectURL("a0client://tenant.auth0.com/authorize#id_token=IT&state=%zz")
	assert.Equal(t, "id_token=IT&state=%zz", u.RawQuery)
	assert.Equal(t, CallbackValues{"id_token": "IT", "state": "%zz"}, ParseCallback(u))
}
