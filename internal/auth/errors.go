package auth

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
	CodeEmailInUse         ErrorCode = "email_in_use"
	CodeWeakPassword       ErrorCode = "weak_password"
	CodeInvalidEmail       ErrorCode = "invalid_email"
	CodeResetTokenInvalid  ErrorCode = "reset_token_invalid"
)

// AuthError is shown to the user as is; it is never retried.
type AuthError struct {
	Code ErrorCode
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Code, e.Err)
	}
	return "auth: " + string(e.Code)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func newAuthError(code ErrorCode, err error) *AuthError {
	return &AuthError{Code: code, Err: err}
}

func HasCode(err error, code ErrorCode) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Code == code
}
