package starlark

import "errors"

var ErrNilNode = errors.New("expression node is nil")
var ErrNilDestination = errors.New("destination vector is nil")
var ErrIndexOutOfRange = errors.New("index out of range")
var ErrCompileFailed = errors.New("starlark compilation error")
var ErrExecFailed = errors.New("starlark execution error")
