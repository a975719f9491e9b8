package toolkit

import "errors"

var (
	ErrToolUnregistered = errors.New("tool is not registered")
	ErrToolNameEmpty    = errors.New("tool name is empty")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrWriteDenied      = errors.New("write tools are disabled")
)
