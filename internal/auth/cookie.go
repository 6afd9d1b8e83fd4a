package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	cookieIssuer   = "savour-server"
	cookieAudience = "savour-browser"
)

// CookieCodec seals session IDs into PASETO v4.local tokens for use as
// cookie values. The cookie carries only the opaque session ID; all
// session state lives server-side.
type CookieCodec struct {
	symmetricKey paseto.V4SymmetricKey
	lifetime     time.Duration
}

// NewCookieCodec creates a codec from a 32-byte symmetric key.
func NewCookieCodec(key []byte, lifetime time.Duration) (*CookieCodec, error) {
	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &CookieCodec{
		symmetricKey: symmetricKey,
		lifetime:     lifetime,
	}, nil
}

// Seal encrypts a session ID into a cookie token.
func (c *CookieCodec) Seal(sessionID string) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(cookieIssuer)
	token.SetAudience(cookieAudience)
	token.SetSubject(sessionID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(c.lifetime))

	return token.V4Encrypt(c.symmetricKey, nil), nil
}

// Open decrypts a cookie token and returns the session ID it carries.
// Expired or tampered tokens fail to open.
func (c *CookieCodec) Open(tokenString string) (string, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(cookieAudience))
	parser.AddRule(paseto.IssuedBy(cookieIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(c.symmetricKey, tokenString, nil)
	if err != nil {
		return "", fmt.Errorf("invalid cookie token: %w", err)
	}

	sessionID, err := token.GetSubject()
	if err != nil {
		return "", fmt.Errorf("cookie token missing subject: %w", err)
	}

	return sessionID, nil
}

// Lifetime returns the configured cookie token lifetime.
func (c *CookieCodec) Lifetime() time.Duration {
	return c.lifetime
}
