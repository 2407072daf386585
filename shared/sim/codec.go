package sim

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes the full world for a snapshot. Floats are written at
// full width so a decoded world is bit-identical to the encoded one.
func (w *World) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode world at frame %d: %w", w.Frame, err)
	}
	return data, nil
}

// Decode restores a world written by Encode.
func Decode(data []byte) (World, error) {
	var w World
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return World{}, fmt.Errorf("decode world: %w", err)
	}
	w.normalize()
	return w, nil
}
