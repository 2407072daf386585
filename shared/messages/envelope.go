package messages

// Envelope is the unit a transport moves between a session and its peers.
// Exactly one field is set.
type Envelope struct {
	Input        *InputMessage     `msgpack:"input,omitempty"`
	Checksum     *ChecksumReport   `msgpack:"checksum,omitempty"`
	Disconnected *PeerDisconnected `msgpack:"disconnected,omitempty"`
}

// Handle returns the player handle the envelope is about.
func (e Envelope) Handle() int {
	switch {
	case e.Input != nil:
		return e.Input.Handle
	case e.Checksum != nil:
		return e.Checksum.Handle
	case e.Disconnected != nil:
		return e.Disconnected.Handle
	}
	return -1
}
