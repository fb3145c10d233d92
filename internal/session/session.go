// Package session stores the server-side half of an anonymous browser
// session and owns the session cookie policy.
package session

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/mcoot/agame/internal/model"
)

// TokenPrefix marks server-issued session tokens
const TokenPrefix = "sess_"

// tokenBytes is the entropy of a session token before encoding
const tokenBytes = 32

// Data is the record kept per session. It holds at most one weak
// reference to a user; nothing guarantees the user still exists.
type Data struct {
	UserID model.UserID `json:"user_id,omitempty"`
}

// Store persists session records. Keys are token digests, never raw tokens.
type Store interface {
	// Load returns the record for key, or model.ErrSessionNotFound when it is absent or expired
	Load(ctx context.Context, key string) (*Data, error)
	// Save writes the record and resets its lifetime to ttl
	Save(ctx context.Context, key string, data *Data, ttl time.Duration) error
	// Delete removes the record if present
	Delete(ctx context.Context, key string) error
}

// Digest returns the storage key for a token
func Digest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Session is the per-request view of a session
type Session struct {
	token string
	isNew bool
	Data  Data
}

// Token returns the opaque session token sent to the client
func (s *Session) Token() string {
	return s.token
}

// Key returns the digest under which the session is stored
func (s *Session) Key() string {
	return Digest(s.token)
}

// IsNew reports whether the session was minted for this request and has
// not been saved yet
func (s *Session) IsNew() bool {
	return s.isNew
}

// UserID returns the bound user id, or "" when unbound
func (s *Session) UserID() model.UserID {
	return s.Data.UserID
}

// Bind records id as the session's user
func (s *Session) Bind(id model.UserID) {
	s.Data.UserID = id
}
