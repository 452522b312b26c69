package fused

import "errors"

var ErrNilNode = errors.New("expression node is nil")
var ErrNilDestination = errors.New("destination vector is nil")
var ErrAliasingViolation = errors.New("destination aliases an expression leaf")
var ErrIndexOutOfRange = errors.New("index out of range")
