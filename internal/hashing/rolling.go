package hashing

import "math/bits"

// buzTable maps each byte value to a fixed pseudo-random 32-bit word.
// Populated deterministically at init so chunk boundaries are stable
// across processes and platforms.
var buzTable [256]uint32

func init() {
	// xorshift32 with a fixed seed; any change here changes every chunk
	// boundary and breaks dedup against existing stores.
	state := uint32(0x9E3779B9)
	for i := range buzTable {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		buzTable[i] = state
	}
}

// RollingHash is a cyclic-polynomial (Buzhash) rolling hash over a fixed
// size byte window. Roll slides the window forward one byte and returns
// the updated sum in O(1).
type RollingHash struct {
	windowSize int
	window     []byte
	pos        int
	filled     int
	sum        uint32
	// rotation applied to the outgoing byte's table word, precomputed
	// from the window size
	outRot int
}

// NewRolling creates a rolling hash with the given window size.
func NewRolling(windowSize int) *RollingHash {
	if windowSize <= 0 {
		windowSize = 64
	}
	return &RollingHash{
		windowSize: windowSize,
		window:     make([]byte, windowSize),
		outRot:     windowSize % 32,
	}
}

// Roll pushes b into the window, evicting the oldest byte once the
// window is full, and returns the updated hash value.
func (r *RollingHash) Roll(b byte) uint32 {
	if r.filled < r.windowSize {
		r.sum = bits.RotateLeft32(r.sum, 1) ^ buzTable[b]
		r.window[r.pos] = b
		r.pos = (r.pos + 1) % r.windowSize
		r.filled++
		return r.sum
	}

	old := r.window[r.pos]
	r.sum = bits.RotateLeft32(r.sum, 1) ^
		bits.RotateLeft32(buzTable[old], r.outRot) ^
		buzTable[b]
	r.window[r.pos] = b
	r.pos = (r.pos + 1) % r.windowSize
	return r.sum
}

// Sum returns the current hash value.
func (r *RollingHash) Sum() uint32 {
	return r.sum
}

// WindowSize returns the configured window size.
func (r *RollingHash) WindowSize() int {
	return r.windowSize
}

// Reset restores the hasher to its initial empty state.
func (r *RollingHash) Reset() {
	for i := range r.window {
		r.window[i] = 0
	}
	r.pos = 0
	r.filled = 0
	r.sum = 0
}
