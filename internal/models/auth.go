package models

// TokenPair is the access/refresh pair returned by login and persisted in
// the credentials file under the keys "access" and "refresh".
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginRequest is the body of POST /core/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /core/auth/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse carries the renewed access token. The refresh token is
// not rotated by the backend.
type RefreshResponse struct {
	Access string `json:"access"`
}

// LogoutRequest revokes the given refresh token.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}
