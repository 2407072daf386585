package rollback

import "github.com/automoto/dagknights/shared/messages"

// Transport moves envelopes between a session and its peers. Poll is called
// once per tick on the simulation goroutine and must not block.
type Transport interface {
	Send(env messages.Envelope) error
	Poll() []messages.Envelope
	Close() error
}
