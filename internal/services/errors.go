package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoRecipients       = errors.New("no emergency contacts with valid email selected")
	ErrNoNearbyUsers      = errors.New("no nearby users found")
	ErrNoLocation         = errors.New("no location found")
)
