package database

import "errors"

// ErrAdvertisementNotFound is returned when an ad is not found in the live collection.
var ErrAdvertisementNotFound = errors.New("advertisement not found")

// ErrDraftNotFound is returned when a draft ad is not found.
var ErrDraftNotFound = errors.New("draft not found")

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")
