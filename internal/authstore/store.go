package authstore

import "github.com/textlinq/smsbridge-admin/internal/models"

// Store is durable client-side storage for the token pair. It is the only
// state the transport mutates outside the request/response cycle.
type Store interface {
	// Tokens returns the stored pair; ok is false when nothing is stored.
	Tokens() (pair models.TokenPair, ok bool)
	// Save persists a new pair, replacing any previous one.
	Save(pair models.TokenPair) error
	// Clear removes the stored pair.
	Clear() error
}

// Authenticated reports whether a token pair is present. Session state is
// derived from storage, not held separately, so a process restart keeps the
// operator logged in; validity is re-established lazily on the first call.
func Authenticated(s Store) bool {
	_, ok := s.Tokens()
	return ok
}
