package messages

// PeerDisconnected is sent by the relay to the rest of a room when a member
// drops.
type PeerDisconnected struct {
	Handle int
}
