package hashing

import (
	"bytes"
	"testing"
)

func TestRollingHashDeterministic(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefghij0123456789"), 50)

	first := rollAll(data, 64)
	second := rollAll(data, 64)

	if len(first) != len(second) {
		t.Fatalf("sequence lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("hash sequence diverges at position %d", i)
		}
	}
}

func TestRollingHashPositionIndependent(t *testing.T) {
	// The hash over a full window must depend only on the window
	// contents, not on what preceded them. Feed the same 64-byte block
	// after two different prefixes and compare final sums.
	block := bytes.Repeat([]byte{0xAB, 0x12, 0x7F, 0x03}, 16)

	r1 := NewRolling(64)
	for _, b := range bytes.Repeat([]byte{0x01}, 200) {
		r1.Roll(b)
	}
	for _, b := range block {
		r1.Roll(b)
	}

	r2 := NewRolling(64)
	for _, b := range bytes.Repeat([]byte{0xEE, 0x55}, 333) {
		r2.Roll(b)
	}
	for _, b := range block {
		r2.Roll(b)
	}

	if r1.Sum() != r2.Sum() {
		t.Errorf("window hash depends on history: %#x vs %#x", r1.Sum(), r2.Sum())
	}
}

func TestRollingHashReset(t *testing.T) {
	r := NewRolling(32)
	for _, b := range []byte("some bytes to dirty the state") {
		r.Roll(b)
	}
	r.Reset()
	if r.Sum() != 0 {
		t.Errorf("Sum after Reset = %#x, want 0", r.Sum())
	}

	fresh := NewRolling(32)
	for _, b := range []byte("replay") {
		if got, want := r.Roll(b), fresh.Roll(b); got != want {
			t.Fatalf("reset hasher diverges from fresh hasher: %#x vs %#x", got, want)
		}
	}
}

func TestRollingHashDistribution(t *testing.T) {
	// Sanity check that the sum actually varies; a constant output
	// would degenerate every boundary decision.
	data := make([]byte, 4096)
	state := uint32(1)
	for i := range data {
		state = state*1664525 + 1013904223
		data[i] = byte(state >> 24)
	}

	seen := make(map[uint32]struct{})
	r := NewRolling(48)
	for _, b := range data {
		seen[r.Roll(b)] = struct{}{}
	}

	if len(seen) < 2048 {
		t.Errorf("rolling hash produced only %d distinct values over 4096 positions", len(seen))
	}
}

func rollAll(data []byte, window int) []uint32 {
	r := NewRolling(window)
	out := make([]uint32, 0, len(data))
	for _, b := range data {
		out = append(out, r.Roll(b))
	}
	return out
}
