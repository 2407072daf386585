package rollback

import (
	"errors"
	"reflect"
	"testing"

	"github.com/automoto/dagknights/shared/netconfig"
	"github.com/automoto/dagknights/shared/sim"
)

func TestSnapshotStoreRing(t *testing.T) {
	store := NewSnapshotStore(4)
	w := sim.NewWorld(21)
	saved := make([]sim.World, 0, 6)
	for f := 0; f < 6; f++ {
		if err := store.Save(w); err != nil {
			t.Fatal(err)
		}
		saved = append(saved, w.Clone())
		w.Advance([]uint8{netconfig.InputRight | netconfig.InputFire, netconfig.InputUp})
	}

	if _, err := store.Load(1); !errors.Is(err, ErrMissingSnapshot) {
		t.Fatalf("overwritten frame: err = %v", err)
	}
	got, err := store.Load(5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, saved[5]) {
		t.Fatal("restored world differs from saved world")
	}
	if sum, ok := store.Checksum(4); !ok || sum != sim.Checksum(&saved[4]) {
		t.Fatal("stored checksum does not match")
	}
	if _, ok := store.Checksum(NullFrame); ok {
		t.Fatal("checksum for null frame")
	}
}
