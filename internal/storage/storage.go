package storage

import "errors"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrItemNotFound = errors.New("gallery item not found")
)

var (
	ErrFileNotFound = errors.New("file not found")
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPurchaseExists       = errors.New("purchase already exists")
)
