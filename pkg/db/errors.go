package db

import "errors"

// ErrNoUser is returned by skill rotation when the requester has no user row.
var ErrNoUser = errors.New("user not found")

// ErrNoSkills is returned by skill rotation when the user row exists but
// declares no skills.
var ErrNoSkills = errors.New("user has no skills")
