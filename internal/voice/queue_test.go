package voice

import "testing"

func TestRingFIFO(t *testing.T) {
	q := newRing[int](4)
	for i := 1; i <= 3; i++ {
		if evicted := q.push(i); evicted {
			t.Fatalf("push %d should not evict", i)
		}
	}
	for i := 1; i <= 3; i++ {
		v, ok := q.tryPop()
		if !ok || v != i {
			t.Fatalf("pop = %d,%v want %d,true", v, ok, i)
		}
	}
}

func TestRingEvictsOldest(t *testing.T) {
	q := newRing[int](2)
	q.push(1)
	q.push(2)
	if !q.push(3) {
		t.Fatal("push into a full ring should report an eviction")
	}

	v, ok := q.tryPop()
	if !ok || v != 2 {
		t.Fatalf("oldest surviving entry = %d,%v want 2,true", v, ok)
	}
	v, ok = q.tryPop()
	if !ok || v != 3 {
		t.Fatalf("newest entry = %d,%v want 3,true", v, ok)
	}
}

func TestRingPushNeverBlocks(t *testing.T) {
	q := newRing[int](1)
	// With no consumer at all, pushes must still return
	for i := 0; i < 1000; i++ {
		q.push(i)
	}
	v, ok := q.tryPop()
	if !ok || v != 999 {
		t.Fatalf("survivor = %d,%v want 999,true", v, ok)
	}
}

func TestRingTryPopEmpty(t *testing.T) {
	q := newRing[int](2)
	if _, ok := q.tryPop(); ok {
		t.Fatal("tryPop on empty ring should report no entry")
	}
	if q.len() != 0 {
		t.Fatalf("len = %d want 0", q.len())
	}
}
