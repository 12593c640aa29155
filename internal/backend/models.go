// Package backend implements the diagnostic service contract in-process. It
// exists for local development and as the real counterparty in gateway tests;
// the hosted service is the production implementation of the same surface.
package backend

// User is the account record tracked by the development backend.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Hospital       string
	Specialization string
	Phone          string
	Location       string
	About          string
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  identityJSON `json:"user"`
}

type identityJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type profileRequest struct {
	Name           string `json:"name"`
	Hospital       string `json:"hospital"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone"`
	Location       string `json:"location"`
	About          string `json:"about"`
}
