// Package protocol holds what every binary must agree on before a match can
// start: the wire version and how a session seed is derived from the peers.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Version is compared during the relay join handshake. Bump it whenever the
// simulation or the wire messages change.
const Version = "dagknights/1"

// ErrNoPeers is returned when a seed is requested for an empty peer list.
var ErrNoPeers = errors.New("protocol: no peers")

// DeriveSessionSeed folds the peer IDs into one seed. Every peer computes
// the same value regardless of the order it learned the IDs in.
func DeriveSessionSeed(peers []uuid.UUID) (uint64, error) {
	if len(peers) == 0 {
		return 0, ErrNoPeers
	}
	var seed uint64
	for _, id := range peers {
		seed ^= binary.BigEndian.Uint64(id[:8])
		seed ^= binary.BigEndian.Uint64(id[8:])
	}
	return seed, nil
}

// ParsePeerIDs parses the handle-ordered peer list sent by the relay.
func ParsePeerIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for i, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("peer %d: %w", i, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// SeedFromStrings is ParsePeerIDs followed by DeriveSessionSeed.
func SeedFromStrings(ids []string) (uint64, error) {
	peers, err := ParsePeerIDs(ids)
	if err != nil {
		return 0, err
	}
	return DeriveSessionSeed(peers)
}
