package cache

import "errors"

var (
	// ErrInvalidConfiguration is returned by New when Options cannot describe
	// a working store (e.g. zero shards). The wrapped message names the field.
	ErrInvalidConfiguration = errors.New("cache: invalid configuration")

	// ErrQueueUnavailable is returned by the actor strategy when a command is
	// not accepted or not answered within Options.ReplyTimeout, or when the
	// shard's consumer has stopped. Callers may retry or treat the store as degraded.
	ErrQueueUnavailable = errors.New("cache: shard queue unavailable")

	// ErrClosed is returned by mutations issued after Close.
	ErrClosed = errors.New("cache: closed")
)
