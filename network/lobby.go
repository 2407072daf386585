package network

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/automoto/dagknights/shared/messages"
	"github.com/gorilla/websocket"
)

// FindMatch waits in the master's lobby room until size peers are present
// and returns the match the master hands out.
func FindMatch(ctx context.Context, masterAddr, room string, size int) (messages.LobbyMatch, error) {
	u := url.URL{
		Scheme:   "ws",
		Host:     masterAddr,
		Path:     "/room/" + url.PathEscape(room),
		RawQuery: url.Values{"next": {strconv.Itoa(size)}}.Encode(),
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return messages.LobbyMatch{}, fmt.Errorf("dial lobby: %w", err)
	}
	defer conn.Close()

	// Unblock the read when ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var match messages.LobbyMatch
	if err := conn.ReadJSON(&match); err != nil {
		if ctx.Err() != nil {
			return messages.LobbyMatch{}, ctx.Err()
		}
		return messages.LobbyMatch{}, fmt.Errorf("read lobby match: %w", err)
	}
	if match.Index < 0 || match.Index >= len(match.PeerIDs) {
		return messages.LobbyMatch{}, fmt.Errorf("lobby match index %d out of %d peers", match.Index, len(match.PeerIDs))
	}
	return match, nil
}
