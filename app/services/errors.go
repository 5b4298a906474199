package services

import (
	"errors"

	"yatube/app/repositories"
)

var (
	// ErrNotFound is returned when a requested post, group or user does not exist.
	ErrNotFound = repositories.ErrNotFound
	// ErrForbidden is returned when a user edits a post they did not write.
	ErrForbidden = errors.New("only the author may edit this post")
	// ErrInvalidCredentials is returned for a wrong username/password pair or an inactive account.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken is returned for unknown, used or expired password reset tokens.
	ErrInvalidToken = errors.New("invalid or expired password reset link")
)
