package handler

import "errors"

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// IDPath is the path of a single resource of a route group.
	IDPath = "/:id"
)

// ErrNilDeps is returned by Init when the router or a dependency is nil.
var ErrNilDeps = errors.New("router or deps is nil")
