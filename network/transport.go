package network

import (
	"errors"

	"github.com/automoto/dagknights/rollback"
)

// Transport is what a rollback session sends through. Both the loopback
// pair and the relay client implement it.
type Transport = rollback.Transport

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("network: transport closed")

var (
	_ Transport = (*Loopback)(nil)
	_ Transport = (*Client)(nil)
)
