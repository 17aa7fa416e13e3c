package loader

import (
	"errors"
	"fmt"
)

var errNotDir = errors.New("not a directory")

// InputError reports a failure to read or parse a declared input artifact.
type InputError struct {
	Path string
	Op   string // stat, walk, read, parse
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
