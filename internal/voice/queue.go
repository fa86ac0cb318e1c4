package voice

// ring is a bounded hand-off queue between the audio callbacks and the
// network loop. push never blocks: a full queue evicts its oldest entry
// so the producer always makes progress.
type ring[T any] struct {
	ch chan T
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{ch: make(chan T, capacity)}
}

// push enqueues v and reports whether an entry was lost to make room.
func (r *ring[T]) push(v T) bool {
	select {
	case r.ch <- v:
		return false
	default:
	}

	// Evict the oldest entry and retry once. A concurrent consumer can
	// win the race and refill the slot; v itself is dropped then, which
	// still counts as one lost entry.
	select {
	case <-r.ch:
	default:
	}
	select {
	case r.ch <- v:
	default:
	}
	return true
}

// tryPop dequeues the oldest entry without blocking.
func (r *ring[T]) tryPop() (T, bool) {
	select {
	case v := <-r.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

func (r *ring[T]) len() int {
	return len(r.ch)
}
