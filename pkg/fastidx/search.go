package fastidx

import "sort"

// childLookup decodes the 3-bit comparison mask of one SIMD block into
// the child subtree to descend into. Bit i of the mask is set when the
// query is greater than block key i; the block holds [root, left, right]
// in BFS order, so for a well-formed block (left <= root <= right) only
// masks 0b000, 0b010, 0b011 and 0b111 can occur:
//
//	0b000 -> 0  query <= left
//	0b010 -> 1  left < query <= root
//	0b011 -> 2  root < query <= right
//	0b111 -> 3  query > right
//
// The remaining encodings contradict the ordering invariant. They are
// mapped to child 0 so that a corrupted image steers to a wrong answer
// instead of an out-of-range offset.
var childLookup = [8]uint8{
	0b000: 0,
	0b001: 0,
	0b010: 1,
	0b011: 2,
	0b100: 0,
	0b101: 0,
	0b110: 0,
	0b111: 3,
}

// maskFunc computes the 3-bit greater-than mask for the SIMD block at
// layout[off..off+2]. blockMask (per-arch) and scalarMask implement it.
type maskFunc func(layout []int32, off int, q int32) int

// scalarMask is the portable twin of the vector kernel. It must return
// bit-identical masks; the SIMD/scalar equivalence tests hold both
// implementations to that.
func scalarMask(layout []int32, off int, q int32) int {
	m := 0
	if q > layout[off] {
		m |= 1
	}
	if q > layout[off+1] {
		m |= 2
	}
	if q > layout[off+2] {
		m |= 4
	}
	return m
}

// Search returns the position in the original sorted order of the
// largest key <= q, or -1 when q is smaller than every key.
func (t *Tree) Search(q int32) int64 {
	if q < t.keys[0] {
		return -1
	}
	if q >= t.keys[t.n-1] {
		return int64(t.n - 1)
	}
	off, child, single := t.descend(q, blockMask)
	return t.resolve(q, off, child, single)
}

// LowerBound returns the position of the smallest key >= q, or Len()
// when q is greater than every key.
//
// This is a plain binary search over the retained sorted copy: the
// blocked traversal answers predecessor queries, and deriving the lower
// bound from the simple path keeps the two contracts independent.
func (t *Tree) LowerBound(q int32) int64 {
	return int64(sort.Search(t.n, func(i int) bool { return t.keys[i] >= q }))
}

// descend walks the blocked image top-down and returns the slot of the
// last block examined, the child the query would enter next, and whether
// that block was a lone bottom-level key rather than a full SIMD block.
//
// A single linear offset o tracks the current block. Inside one block
// the truncated child sub-blocks sit right behind it, so a step is
// o += simdKeys + c*(2^rem - 1) with rem counted inside the block. When
// a block of d levels is exhausted, its 2^d full child subtrees follow
// the enclosing structure's top block in child-path order, each exactly
// 2^r - 1 slots wide, so the walk re-bases off the structure start and
// the child path accumulated across the block. That happens at two
// granularities, cache line within page and page within tree, which is
// all three nesting levels of the layout.
func (t *Tree) descend(q int32, mask maskFunc) (off, child int, single bool) {
	o := 0
	r := t.depth // levels left in the whole tree
	for {
		pd := min(t.pageDepth, r)
		pageBase := o
		pagePath := 0
		rp := pd // levels left inside the current page block
		for {
			ld := min(lineLevels, rp)
			lineBase := o
			linePath := 0
			rl := ld // levels left inside the current cache-line block
			for {
				if rl == 1 {
					// A lone bottom level: odd block depth.
					child = 0
					if q > t.layout[o] {
						child = 1
					}
					r--
					if r == 0 {
						return o, child, true
					}
					linePath = linePath<<1 | child
					break
				}

				child = int(childLookup[mask(t.layout, o, q)])
				r -= simdLevels
				if r == 0 {
					return o, child, false
				}
				linePath = linePath<<simdLevels | child
				rl -= simdLevels
				if rl == 0 {
					break
				}
				o += simdKeys + child*(1<<rl-1)
			}

			pagePath = pagePath<<ld | linePath
			rp -= ld
			if rp == 0 {
				break
			}
			o = lineBase + (1<<ld - 1) + linePath*(1<<rp-1)
		}

		o = pageBase + (1<<pd - 1) + pagePath*(1<<r-1)
	}
}

// resolve maps the traversal endpoint back to a sorted position. The
// rank map seeds a lower bound from the leaf block, then a short forward
// scan settles duplicate runs and the partition boundary; the scan never
// needs more steps than the block is wide.
func (t *Tree) resolve(q int32, off, child int, single bool) int64 {
	n := int64(t.n)

	var lo int64
	scan := 3
	if single {
		scan = 2
		lo = int64(t.ranks[off])
		if child == 0 {
			lo--
		}
	} else {
		// The block keys [root, left, right] hold consecutive in-order
		// ranks: rank(left) = rank(root)-1, rank(right) = rank(root)+1.
		switch child {
		case 0:
			lo = int64(t.ranks[off+1]) - 1
		case 1:
			lo = int64(t.ranks[off+1])
		case 2:
			lo = int64(t.ranks[off])
		default:
			lo = int64(t.ranks[off+2])
		}
	}

	if lo < -1 {
		lo = -1
	}
	if lo > n-1 {
		lo = n - 1
	}
	for ; scan > 0 && lo+1 < n && t.keys[lo+1] <= q; scan-- {
		lo++
	}
	return lo
}
