package auth

import "errors"

// Gateway outcomes. Unknown username and wrong password both map to
// ErrInvalidCredentials so callers cannot enumerate accounts through the
// login endpoint; registration conflicts stay distinguishable on purpose.
var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrWrongPassword      = errors.New("current password is incorrect")
)
