package auth

// AnonymousAuthResponse is returned by POST /v1/auth/anonymous.
type AnonymousAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
}

// SessionResponse is returned by GET /v1/auth/session.
type SessionResponse struct {
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// ErrorResponse is the error envelope shared by all endpoints.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
