// Package fastidx implements an immutable, cache-conscious predecessor
// index over a sorted array of int32 keys.
//
// The index rearranges the keys into a hierarchically blocked binary tree:
// depth-2 subtrees sized for one 128-bit SIMD comparison, grouped into
// depth-4 subtrees sized for one 64-byte cache line, grouped into subtrees
// sized for one virtual-memory page. A query walks the blocked image with
// one vector comparison per two tree levels and finishes with a bounded
// scan over the original sorted keys, so lookups touch a handful of cache
// lines instead of O(log N) scattered ones.
//
// The index is built once and never mutated, so any number of goroutines
// may query the same Tree concurrently without locking.
package fastidx

import (
	"errors"
	"fmt"
	"math"
	"os"
)

const (
	// simdLevels is the number of tree levels resolved by one vector
	// comparison; simdKeys keys form one depth-2 complete subtree and fit
	// in a single 128-bit load together with one slot of padding.
	simdLevels = 2
	simdKeys   = 1<<simdLevels - 1

	// lineLevels groups SIMD blocks into cache-line blocks of lineKeys
	// keys (lineKeys * 4 = 60 bytes, less than one 64-byte line). Blocks
	// are packed back to back, 15 slots apart, so most of them do not
	// start on a 64-byte boundary and may span two lines.
	lineLevels = 4
	lineKeys   = 1<<lineLevels - 1

	// sentinel pads the tree up to a complete shape. It compares greater
	// than every possible query, so traversal never descends toward a
	// padded slot claiming to hold a predecessor.
	sentinel = math.MaxInt32

	// maxKeys bounds the input so the padded node count and the rank map
	// entries stay within int32 range.
	maxKeys = math.MaxInt32
)

// Construction errors. Queries cannot fail: every invariant they rely on
// is established at build time.
var (
	ErrNoKeys       = errors.New("no keys provided")
	ErrUnsortedKeys = errors.New("keys not sorted in ascending order")
	ErrTooManyKeys  = errors.New("too many keys for index")
)

// Tree is an immutable predecessor index over a sorted key array.
// The zero value is not usable; build one with New and release it with
// Close. A Tree must not be queried after Close.
type Tree struct {
	layout []int32 // hierarchically blocked tree image, sentinel padded
	ranks  []int32 // ranks[p] = sorted rank of layout[p], or n for padded slots
	keys   []int32 // retained copy of the sorted input

	n         int // number of real keys
	depth     int // levels in the padded complete tree
	nodes     int // padded node count, 2^depth - 1
	pageDepth int // page block levels for the runtime page size

	mem *layoutMem // backing allocation for layout, nil after Close
}

// New builds an index over keys, which must be sorted in ascending order
// (duplicates are fine) and non-empty. The input is copied; the caller
// keeps ownership of the slice.
func New(keys []int32) (*Tree, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	if len(keys) > maxKeys {
		return nil, ErrTooManyKeys
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			return nil, fmt.Errorf("%w: keys[%d] > keys[%d]", ErrUnsortedKeys, i-1, i)
		}
	}

	t := &Tree{
		n:         len(keys),
		depth:     treeDepth(len(keys)),
		pageDepth: pageBlockDepth(os.Getpagesize()),
	}
	t.nodes = 1<<t.depth - 1

	t.keys = make([]int32, t.n)
	copy(t.keys, keys)

	if err := t.buildLayout(); err != nil {
		// The layout image is the only manually managed allocation; the
		// rest is garbage collected, so failing here leaks nothing.
		return nil, fmt.Errorf("build layout: %w", err)
	}
	return t, nil
}

// Close releases the layout image. It is safe to call more than once;
// the Tree must not be queried afterwards.
func (t *Tree) Close() error {
	if t.mem == nil {
		return nil
	}
	err := t.mem.release()
	t.mem = nil
	t.layout = nil
	t.ranks = nil
	t.keys = nil
	return err
}

// Len returns the number of keys in the index.
func (t *Tree) Len() int {
	return t.n
}

// KeyAt returns the key at position i of the original sorted order.
// It panics when i is outside [0, Len()), mirroring slice indexing.
func (t *Tree) KeyAt(i int64) int32 {
	return t.keys[i]
}

// Stats describes the built index shape.
type Stats struct {
	Keys           int // real keys stored
	Depth          int // levels in the padded complete tree
	PaddedNodes    int // sentinel slots in the tree image
	LayoutBytes    int // bytes backing the blocked image
	PageBlockDepth int // levels per page block at the runtime page size
}

// Stats reports the shape of the index.
func (t *Tree) Stats() Stats {
	return Stats{
		Keys:           t.n,
		Depth:          t.depth,
		PaddedNodes:    t.nodes - t.n,
		LayoutBytes:    t.mem.size(),
		PageBlockDepth: t.pageDepth,
	}
}

// treeDepth returns the smallest depth d with 2^d - 1 >= n.
func treeDepth(n int) int {
	d := 0
	for nodes := 1; nodes-1 < n; nodes <<= 1 {
		d++
	}
	return d
}

// pageBlockDepth returns the largest depth d such that a complete subtree
// of d levels ((2^d - 1) keys) still fits in one page. 10 for 4 KiB
// pages, 19 for 2 MiB huge pages.
func pageBlockDepth(pageSize int) int {
	d := 1
	for (1<<(d+1))-1 <= pageSize/4 {
		d++
	}
	return d
}
