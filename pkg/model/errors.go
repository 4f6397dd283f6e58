package model

import "errors"

var (
	ErrDivideByZero = errors.New("division by zero")
	ErrUnknownBinOp = errors.New("unknown binary operator")
)
