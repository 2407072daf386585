package protocol

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestDeriveSessionSeedIsOrderIndependent(t *testing.T) {
	a := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	b := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")

	ab, err := DeriveSessionSeed([]uuid.UUID{a, b})
	if err != nil {
		t.Fatal(err)
	}
	ba, err := DeriveSessionSeed([]uuid.UUID{b, a})
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Fatalf("seed depends on order: %x vs %x", ab, ba)
	}

	single, _ := DeriveSessionSeed([]uuid.UUID{a})
	if single == ab {
		t.Fatal("adding a peer did not change the seed")
	}
}

func TestDeriveSessionSeedEmpty(t *testing.T) {
	if _, err := DeriveSessionSeed(nil); !errors.Is(err, ErrNoPeers) {
		t.Fatalf("err = %v, want ErrNoPeers", err)
	}
}

func TestSeedFromStrings(t *testing.T) {
	ids := []string{"6ba7b810-9dad-11d1-80b4-00c04fd430c8", "f47ac10b-58cc-4372-a567-0e02b2c3d479"}
	got, err := SeedFromStrings(ids)
	if err != nil {
		t.Fatal(err)
	}
	peers, _ := ParsePeerIDs(ids)
	want, _ := DeriveSessionSeed(peers)
	if got != want {
		t.Fatalf("got %x, want %x", got, want)
	}

	if _, err := SeedFromStrings([]string{"not-a-uuid"}); err == nil {
		t.Fatal("expected parse error")
	}
}
