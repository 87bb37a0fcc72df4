package sessions

import "time"

// CookieName is the cookie carrying the signed session token.
const CookieName = "session"

// Session is the content of a signed session token. ID is the token id used
// for revocation.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Issued is a freshly signed session and its token.
type Issued struct {
	Token   string
	Session *Session
}
