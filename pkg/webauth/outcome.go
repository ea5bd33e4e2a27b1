package webauth

import "strings"

const errorAccessDenied = "access_denied"

// OutcomeKind tags the terminal outcome of a flow.
type OutcomeKind int

const (
	KindIgnored OutcomeKind = iota
	KindSuccess
	KindProviderDenied
	KindProviderError
	KindStateMismatch
)

func (k OutcomeKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindProviderDenied:
		return "provider_denied"
	case KindProviderError:
		return "provider_error"
	case KindStateMismatch:
		return "state_mismatch"
	default:
		return "ignored"
	}
}

// Outcome is one of Success, ProviderDenied, ProviderError, StateMismatch or
// Ignored.
type Outcome interface {
	Kind() OutcomeKind
	outcome()
}

// Success carries the tokens found in the redirect. Missing fields are empty.
type Success struct {
	IDToken      string
	AccessToken  string
	TokenType    string
	RefreshToken string

	code string
}

// ProviderDenied is produced for error=access_denied.
type ProviderDenied struct{}

// ProviderError is produced for any other error code.
type ProviderError struct {
	Code string
}

// StateMismatch is produced when the returned state differs from the issued
// nonce. It is never upgraded to Success.
type StateMismatch struct {
	Received string
}

// Ignored means the redirect carried nothing actionable, or the host
// reported the interaction as cancelled. No callback fires for it.
type Ignored struct{}

func (Success) Kind() OutcomeKind        { return KindSuccess }
func (ProviderDenied) Kind() OutcomeKind { return KindProviderDenied }
func (ProviderError) Kind() OutcomeKind  { return KindProviderError }
func (StateMismatch) Kind() OutcomeKind  { return KindStateMismatch }
func (Ignored) Kind() OutcomeKind        { return KindIgnored }

func (Success) outcome()        {}
func (ProviderDenied) outcome() {}
func (ProviderError) outcome()  {}
func (StateMismatch) outcome()  {}
func (Ignored) outcome()        {}

// Code returns the authorization code of a code-flow redirect, if any.
func (s Success) Code() string {
	return s.code
}

// Classify maps parsed redirect values to an outcome. The rules are applied
// in order: provider error, state mismatch, success, ignored.
func Classify(issuedNonce string, values CallbackValues) Outcome {
	if code, ok := values[KeyError]; ok {
		if strings.EqualFold(code, errorAccessDenied) {
			return ProviderDenied{}
		}
		return ProviderError{Code: code}
	}
	if !ValidateState(issuedNonce, values) {
		return StateMismatch{Received: values[KeyState]}
	}
	if len(values) > 0 {
		return Success{
			IDToken:      values[KeyIDToken],
			AccessToken:  values[KeyAccessToken],
			TokenType:    values[KeyTokenType],
			RefreshToken: values[KeyRefreshToken],
			code:         values[KeyCode],
		}
	}
	return Ignored{}
}
