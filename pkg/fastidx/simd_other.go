//go:build !amd64

package fastidx

// blockMask falls back to the scalar mask on architectures without the
// vector kernel. Both implementations return bit-identical masks, so
// traversal behaves the same everywhere and differs only in timing.
func blockMask(layout []int32, off int, q int32) int {
	return scalarMask(layout, off, q)
}
