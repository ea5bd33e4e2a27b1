package db

import "time"

type PendingAuthorization struct {
	Token        string
	Nonce        string
	Connection   string
	Provider     string
	CodeVerifier string
	RedirectURI  string
	CreatedAt    time.Time
}

type Credential struct {
	ID           string
	Connection   string
	IDToken      string
	AccessToken  string
	TokenType    string
	RefreshToken string
	Subject      string
	CreatedAt    time.Time
}
