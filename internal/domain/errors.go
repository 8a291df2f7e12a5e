package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInputValidation   = errors.New("invalid input")
	ErrCookieParse       = errors.New("no cookies could be parsed")
	ErrCookieJarNotFound = errors.New("cookie jar not found")
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrSecretNotFound    = errors.New("secret not found")
)

type AuthFailure string

const (
	AuthWrongPassword    AuthFailure = "wrong_password"
	AuthTimeout          AuthFailure = "timeout"
	AuthUIElementMissing AuthFailure = "ui_element_missing"
	AuthUnknown          AuthFailure = "unknown"
)

type AuthError struct {
	Reason AuthFailure
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed (%s)", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type TwoFactorFailure string

const (
	TwoFactorWrongCode TwoFactorFailure = "wrong_code"
	TwoFactorTimeout   TwoFactorFailure = "timeout"
)

type TwoFactorError struct {
	Reason TwoFactorFailure
	Err    error
}

func (e *TwoFactorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("second factor failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("second factor failed (%s)", e.Reason)
}

func (e *TwoFactorError) Unwrap() error {
	return e.Err
}

type CollectionFailure string

const (
	CollectionPrivateAccount  CollectionFailure = "private_account"
	CollectionProfileNotFound CollectionFailure = "profile_not_found"
	CollectionTimeout         CollectionFailure = "timeout"
	CollectionUnknown         CollectionFailure = "unknown"
)

type CollectionError struct {
	Reason  CollectionFailure
	Account Identifier
	Err     error
}

func (e *CollectionError) Error() string {
	msg := fmt.Sprintf("collection of %q failed (%s)", e.Account, e.Reason)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

func IsAuthFailure(err error, reason AuthFailure) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Reason == reason
}
