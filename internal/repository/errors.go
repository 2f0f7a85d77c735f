package repository

import "errors"

// ErrNotFound is returned by lookups and updates that target a missing row.
var ErrNotFound = errors.New("record not found")
