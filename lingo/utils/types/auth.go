// lingo/utils/types/auth.go
package types

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the subset of the auth response the CLI cares about.
type TokenResponse struct {
	Token string `json:"token"`
}
