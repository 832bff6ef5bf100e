// Package repository implements MySQL persistence for the floor
// service. Sentinel errors defined here let higher layers distinguish
// failure scenarios without inspecting driver errors: handlers map
// ErrNotFound to 404 and ErrConflict to 409.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update collides with
// existing state, such as registering an email that is already taken.
var ErrConflict = errors.New("conflict")
