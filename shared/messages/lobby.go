package messages

// LobbyMatch is written by the master to each waiting peer once a room has
// enough players. Index is the receiving peer's position in PeerIDs.
type LobbyMatch struct {
	Room         string   `json:"room"`
	PeerIDs      []string `json:"peer_ids"`
	Index        int      `json:"index"`
	RelayAddress string   `json:"relay_address"`
}
