package messages

// JoinRequest is sent by a peer after connecting to the relay to request a
// seat in a room.
type JoinRequest struct {
	Version    string
	PlayerName string
	Room       string
	PeerID     string
}

// JoinAccepted is sent to every member once their room is full. PeerIDs are
// ordered by handle.
type JoinAccepted struct {
	Handle   int
	PeerIDs  []string
	Room     string
	TickRate int
}

// JoinRejected is sent by the relay when a join request is refused.
type JoinRejected struct {
	Reason string
}
