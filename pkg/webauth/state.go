package webauth

// ValidateState reports whether values is consistent with the issued nonce.
// A redirect without a state key is not checked, so it reports true; that
// means "no mismatch detected", not "valid".
func ValidateState(issuedNonce string, values CallbackValues) bool {
	state, ok := values[KeyState]
	if !ok {
		return true
	}
	return state == issuedNonce
}
