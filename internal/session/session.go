// Package session issues and validates session tokens. A token is an HS256
// JWT bound to a username; its SHA-256 hash is additionally registered in a
// token store so sessions can be revoked and rotated centrally. Validation
// is the single gate every mutating entry point passes through.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store persists token hashes per username. Get returns "" when the user
// has no registered session.
type Store interface {
	Get(ctx context.Context, username string) (string, error)
	Save(ctx context.Context, username, hash string, ttl time.Duration) error
	Delete(ctx context.Context, username string) error
}

// Validator checks tokens for named actions and can issue new ones.
type Validator struct {
	secret string
	store  Store // nil disables the revocation check
	ttl    time.Duration
}

// NewValidator builds a Validator. store may be nil, in which case tokens
// are checked by signature and expiry only.
func NewValidator(secret string, store Store, ttlMin int) *Validator {
	return &Validator{
		secret: secret,
		store:  store,
		ttl:    time.Duration(ttlMin) * time.Minute,
	}
}

// Issue signs a token for username, registers its hash in the store and
// returns the token with its expiry.
func (v *Validator) Issue(ctx context.Context, username string) (string, time.Time, error) {
	exp := time.Now().UTC().Add(v.ttl)
	claims := jwt.MapClaims{
		"sub": username,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(v.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	if v.store != nil {
		if err := v.store.Save(ctx, username, hashToken(signed), v.ttl); err != nil {
			return "", time.Time{}, err
		}
	}
	return signed, exp, nil
}

// Validate reports whether token is a live session for username performing
// the named action. A valid check slides the store TTL forward, so active
// sessions stay alive. Callers treat false as a hard unauthorized stop and
// never surface the reason.
func (v *Validator) Validate(ctx context.Context, token, username, action string) bool {
	if token == "" || username == "" {
		return false
	}
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(v.secret), nil
	})
	if err != nil || !tok.Valid {
		log.Printf("session: rejected token for %s action=%s", username, action)
		return false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	if sub, _ := claims["sub"].(string); sub != username {
		log.Printf("session: token subject mismatch for %s action=%s", username, action)
		return false
	}
	if v.store == nil {
		return true
	}
	stored, err := v.store.Get(ctx, username)
	if err != nil || stored == "" || stored != hashToken(token) {
		log.Printf("session: no live session for %s action=%s", username, action)
		return false
	}
	// Rotate: sliding expiry on every validated action.
	if err := v.store.Save(ctx, username, stored, v.ttl); err != nil {
		log.Printf("session: ttl refresh for %s failed: %v", username, err)
	}
	return true
}

// Revoke drops the user's registered session, ending it immediately.
func (v *Validator) Revoke(ctx context.Context, username string) error {
	if v.store == nil {
		return nil
	}
	return v.store.Delete(ctx, username)
}

// hashToken returns the hex SHA-256 of a token. Only hashes are stored at
// rest.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
