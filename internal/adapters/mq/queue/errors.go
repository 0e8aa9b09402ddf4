package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueFull   = errors.New("refresh queue is full")
	ErrQueueClosed = errors.New("refresh queue is closed")
)
