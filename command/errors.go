package command

import "errors"

var (
	// ErrEngineRequired indicates the ownership engine was not wired in.
	ErrEngineRequired = errors.New("go-prefgraph: ownership engine required")
)
