package domain

import "errors"

// Auth errors
var (
	ErrEmailTaken          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrWrongPassword       = errors.New("wrong password")
	ErrPasswordNotSet      = errors.New("password not found")
	ErrInvalidOTP          = errors.New("invalid OTP")
	ErrMissingToken        = errors.New("missing token")
	ErrOldPasswordRequired = errors.New("old password required to set a new password")
)

// Task errors
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrDueTimeInPast = errors.New("due time must not be in the past")
)
