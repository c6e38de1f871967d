package services

import "errors"

// Friend request errors. All are caller errors that depend only on current
// state, so retrying without a state change yields the same result.
var (
	ErrSelfRequest      = errors.New("cannot send a friend request to yourself")
	ErrDuplicateRequest = errors.New("friend request already exists")
	ErrUnauthorized     = errors.New("only the recipient can resolve this friend request")
	ErrAlreadyResolved  = errors.New("friend request already resolved")
	ErrNotFound         = errors.New("not found")
	ErrUnknownUser      = errors.New("unknown user")
	ErrInvalidDecision  = errors.New("decision must be accepted or rejected")
)

// Account errors.
var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidInput       = errors.New("invalid input")
)
