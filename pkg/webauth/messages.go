package webauth

// Messages is the human facing text handed to OnFailure.
type Messages struct {
	ErrorTitle          string
	AccessDenied        string
	GenericError        string
	InvalidState        string
	InvalidAuthorizeURL string
}

// DefaultMessages is used unless the coordinator is given its own catalog.
var DefaultMessages = Messages{
	ErrorTitle:          "There was an error during authentication",
	AccessDenied:        "Permissions were not granted. Try again.",
	GenericError:        "An error occurred while authenticating. Try again.",
	InvalidState:        "The received state is invalid. Try again.",
	InvalidAuthorizeURL: "The authorize URL is invalid. Check your configuration.",
}

// ForOutcome returns the title, message and cause for a failure outcome.
// ok is false for Success and Ignored.
func (m Messages) ForOutcome(o Outcome) (title, message string, cause error, ok bool) {
	switch v := o.(type) {
	case ProviderDenied:
		return m.ErrorTitle, m.AccessDenied, &AuthorizeError{Code: errorAccessDenied}, true
	case ProviderError:
		return m.ErrorTitle, m.GenericError, &AuthorizeError{Code: v.Code}, true
	case StateMismatch:
		return m.ErrorTitle, m.InvalidState, ErrStateMismatch, true
	default:
		return "", "", nil, false
	}
}
