package sim

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
)

// Checksum hashes the rollback-relevant transforms of w: players in handle
// order, then bullets in spawn order. Equal worlds hash equal on every peer.
// It panics on a non-finite transform, which only a simulation bug can
// produce.
func Checksum(w *World) uint64 {
	if err := w.Validate(); err != nil {
		panic(fmt.Sprintf("sim: checksum: %v", err))
	}

	h := fnv.New64a()
	var buf [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putF64 := func(f float64) { putU64(math.Float64bits(f)) }

	for _, p := range w.Players {
		putU64(uint64(p.Handle))
		if !p.Alive {
			putU64(0)
			continue
		}
		putU64(1)
		putF64(p.Position.X)
		putF64(p.Position.Y)
		putF64(p.Position.Z)
		putF64(p.Rotation.X)
		putF64(p.Rotation.Y)
		putF64(p.Rotation.Z)
		putF64(p.Rotation.W)
	}
	for _, b := range w.Bullets {
		putF64(b.Position.X)
		putF64(b.Position.Y)
		putF64(b.Position.Z)
		putF64(b.Rotation.X)
		putF64(b.Rotation.Y)
		putF64(b.Rotation.Z)
		putF64(b.Rotation.W)
	}
	return h.Sum64()
}
