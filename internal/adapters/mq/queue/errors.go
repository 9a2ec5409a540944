package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrQueueFull   = errors.New("repair queue is full")
	ErrQueueClosed = errors.New("repair queue is closed")
)
