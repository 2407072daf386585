package messages

// InputMessage carries a contiguous range of one player's inputs starting at
// StartFrame. Senders repeat every frame the receiver has not acknowledged,
// so a lost message is covered by the next one.
type InputMessage struct {
	Handle     int
	StartFrame int64
	Bits       []uint8
	Ack        int64 // highest contiguous frame received from the addressee, -1 for none
}

// EndFrame is the last frame covered by the message, or StartFrame-1 when
// the range is empty.
func (m InputMessage) EndFrame() int64 {
	return m.StartFrame + int64(len(m.Bits)) - 1
}
