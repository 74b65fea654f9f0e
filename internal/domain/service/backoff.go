package service

import "time"

// Backoff yields exponentially growing delays: Initial, Initial*Factor, ...
// capped at Max. Reset starts over from Initial.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Factor  float64

	next time.Duration
}

func NewBackoff(initial, max time.Duration, factor float64) *Backoff {
	if factor < 1 {
		factor = 1
	}
	if max < initial {
		max = initial
	}
	return &Backoff{Initial: initial, Max: max, Factor: factor}
}

// Next returns the delay to apply after the current failure.
func (b *Backoff) Next() time.Duration {
	if b.next == 0 {
		b.next = b.Initial
	}
	d := b.next
	if d > b.Max {
		d = b.Max
	}

	grown := time.Duration(float64(b.next) * b.Factor)
	if grown > b.Max || grown <= 0 {
		grown = b.Max
	}
	b.next = grown
	return d
}

func (b *Backoff) Reset() {
	b.next = 0
}
