//go:build amd64

package fastidx

// sseMask broadcasts q across a 128-bit register, runs a signed packed
// greater-than compare against the four slots starting at block (three
// block keys plus one slot of padding) and extracts the low three sign
// bits. SSE2 is part of the amd64 baseline, so no feature probe is
// needed. Implemented in simd_amd64.s.
//
//go:noescape
func sseMask(block *int32, q int32) int32

// blockMask is the vector implementation of maskFunc. The image carries
// 16 bytes of trailing padding, so the wide load is in bounds for every
// block position.
func blockMask(layout []int32, off int, q int32) int {
	return int(sseMask(&layout[off], q))
}
