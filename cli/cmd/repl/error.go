package repl

import "github.com/ardnew/matscript/material"

// The REPL reports its failures with the same error type as the material
// package, so attributes attached here reach the structured log unchanged.
var (
	ErrOutOfBounds  = material.NewError("history index out of range")
	ErrEditDeclined = material.NewError("script edit declined")
	ErrNoFile       = material.NewError("no material script to query")
)
