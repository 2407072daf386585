package rollback

import "testing"

func TestInputQueueOutOfOrder(t *testing.T) {
	q := NewInputQueue()
	if !q.Confirm(2, 4) {
		t.Fatal("frame 2 rejected")
	}
	if q.LastConfirmed() != NullFrame {
		t.Fatalf("last confirmed = %d with a gap at 0", q.LastConfirmed())
	}
	q.Confirm(0, 1)
	q.Confirm(1, 2)
	if q.LastConfirmed() != 2 {
		t.Fatalf("last confirmed = %d, want 2", q.LastConfirmed())
	}
	if got := q.Range(0, 5); len(got) != 3 || got[0] != 1 || got[2] != 4 {
		t.Fatalf("range = %v", got)
	}
}

func TestInputQueueDuplicates(t *testing.T) {
	q := NewInputQueue()
	q.Confirm(0, 3)
	if q.Confirm(0, 3) {
		t.Fatal("duplicate accepted")
	}
	if q.Conflicts() != 0 {
		t.Fatal("identical duplicate counted as conflict")
	}
	q.Confirm(0, 7)
	if q.Conflicts() != 1 {
		t.Fatalf("conflicts = %d, want 1", q.Conflicts())
	}
	if bits, _ := q.Get(0); bits != 3 {
		t.Fatalf("conflicting duplicate replaced value: %d", bits)
	}
}

func TestInputQueueRejectsFarFuture(t *testing.T) {
	q := NewInputQueue()
	if q.Confirm(inputQueueSize+1, 1) {
		t.Fatal("frame beyond the ring accepted")
	}
	if q.Confirm(-3, 1) {
		t.Fatal("negative frame accepted")
	}
}

func TestInputQueueKeepsLastConfirmedSlot(t *testing.T) {
	q := NewInputQueue()
	for f := Frame(0); f < 10; f++ {
		q.Confirm(f, 5)
	}
	last := q.LastConfirmed()
	if q.Confirm(last+inputQueueSize, 2) {
		t.Fatal("frame sharing the last confirmed slot accepted")
	}
	if bits, ok := q.Get(last); !ok || bits != 5 {
		t.Fatalf("last confirmed input lost: %d (ok=%v)", bits, ok)
	}
	if bits, _ := q.Use(last + 1); bits != 5 {
		t.Fatalf("prediction = %d, want 5", bits)
	}
	if !q.Confirm(last+inputQueueSize-1, 2) {
		t.Fatal("last frame inside the ring rejected")
	}
}

func TestInputQueuePrediction(t *testing.T) {
	q := NewInputQueue()
	if bits, ok := q.Use(0); bits != 0 || ok {
		t.Fatalf("empty queue predicted %d (confirmed=%v)", bits, ok)
	}
	q.Confirm(0, 9)
	if bits, ok := q.Use(1); bits != 9 || ok {
		t.Fatalf("prediction = %d, want repeat of last confirmed", bits)
	}
}

func TestInputQueueFirstIncorrect(t *testing.T) {
	q := NewInputQueue()
	for f := Frame(0); f < 5; f++ {
		q.Use(f)
	}
	q.Confirm(0, 0)
	q.Confirm(1, 0)
	if f := q.TakeFirstIncorrect(); f != NullFrame {
		t.Fatalf("correct prediction flagged at %d", f)
	}
	q.Confirm(3, 1)
	q.Confirm(2, 1)
	if f := q.TakeFirstIncorrect(); f != 2 {
		t.Fatalf("first incorrect = %d, want 2", f)
	}
	if f := q.TakeFirstIncorrect(); f != NullFrame {
		t.Fatal("first incorrect not cleared")
	}
}
