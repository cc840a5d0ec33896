package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the backend puts into its bearer tokens.
type Claims struct {
	UserID    uint
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseClaims decodes token without verifying its signature; the signing
// key stays on the server. Only the payload shape is checked.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	c := &Claims{}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, ok := mc["orig_iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0)
	} else if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if id, ok := mc["identity"].(float64); ok && id > 0 {
		c.UserID = uint(id)
	}

	// The user claim is the JSON-encoded user record.
	var user struct {
		ID       uint   `json:"ID"`
		Username string `json:"username"`
	}
	switch v := mc["user"].(type) {
	case string:
		_ = json.Unmarshal([]byte(v), &user)
	case map[string]any:
		if name, ok := v["username"].(string); ok {
			user.Username = name
		}
	}
	c.Username = user.Username
	if c.UserID == 0 {
		c.UserID = user.ID
	}
	if c.Username == "" {
		c.Username, _ = mc.GetSubject()
	}

	return c, nil
}

// Remaining returns how long the token stays valid after now.
// It is zero for expired tokens and for tokens without an exp claim.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c == nil || c.ExpiresAt.IsZero() || now.After(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
