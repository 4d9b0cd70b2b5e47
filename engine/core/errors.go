package core

import (
	"errors"
)

var (
	// ErrRendererInitialization marks any failure while building GPU objects for a renderer.
	// Construction is a one-time startup step, callers decide whether to abort.
	ErrRendererInitialization = errors.New("renderer initialization failed")
	// ErrRendererDestroyed is returned when a renderer is used after its resources were released.
	ErrRendererDestroyed = errors.New("renderer already destroyed")
	// ErrPrecondition reports caller misuse detected locally (nil collaborators, empty input).
	ErrPrecondition = errors.New("precondition violated")
	// ErrUnknownChunk is returned when a chunk has no slot in the draw buffer.
	ErrUnknownChunk = errors.New("unknown chunk")
	// ErrDrawBufferFull is returned when every chunk slot of a draw buffer is in use.
	ErrDrawBufferFull = errors.New("draw buffer full")
	ErrInvalidShader  = errors.New("invalid shader binary")
	ErrUnknownHandle  = errors.New("unknown gpu handle")
	ErrUnknown        = errors.New("unknown")
)
