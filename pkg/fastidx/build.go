package fastidx

import "os"

// The blocked layout is a permutation of a padded complete binary tree.
// Conceptually the tree lives in BFS order: node i has children 2i+1 and
// 2i+2, and the in-order walk of the whole tree visits the real keys in
// ascending order, with sentinel slots taking the trailing in-order
// positions. The permutation then rewrites that tree block by block:
//
//   - a page block is the top pageDepth levels of a subtree, emitted as
//     cache-line blocks, followed by each of its 2^pageDepth child
//     subtrees emitted as page blocks;
//   - a cache-line block is the top lineLevels levels, emitted as SIMD
//     blocks, followed by its child subtrees as cache-line blocks;
//   - a SIMD block is simdLevels levels written verbatim in BFS order.
//
// Because the tree is complete and each recursive emission writes one
// contiguous run, every unit has a known exact size: a full subtree with
// r levels below a block boundary takes 2^r - 1 slots, and a truncated
// d-level top block takes 2^d - 1. Traversal depends on that: children
// are addressed with plain offset arithmetic off a single running
// position, never through a directory.

// buildLayout allocates the image and the rank map and fills both from
// the retained key copy. On error nothing is left allocated.
func (t *Tree) buildLayout() error {
	imageBytes := (t.nodes*4+63)/64*64 + 16 // 64-byte multiple plus slack for one unaligned 16-byte load
	align := 64
	if t.depth > lineLevels {
		align = os.Getpagesize()
	}

	mem, err := allocLayout(imageBytes, align)
	if err != nil {
		return err
	}

	layout := mem.int32s()
	for i := range layout {
		layout[i] = sentinel
	}

	ranks := make([]int32, t.nodes)

	b := &layoutBuilder{
		keys:     t.keys,
		bfsRanks: inorderRanks(t.nodes),
		layout:   layout,
		ranks:    ranks,
		depths:   [3]int{simdLevels, lineLevels, t.pageDepth},
	}
	b.emit(0, t.depth, 2)

	t.mem = mem
	t.layout = layout[:t.nodes]
	t.ranks = ranks
	return nil
}

// inorderRanks computes, for every BFS position of a complete binary tree
// with the given node count, its visit order in an in-order walk. That
// order is exactly the sorted-array rank of the key the node carries.
func inorderRanks(nodes int) []int32 {
	ranks := make([]int32, nodes)
	next := int32(0)
	var walk func(i int)
	walk = func(i int) {
		if i >= nodes {
			return
		}
		walk(2*i + 1)
		ranks[i] = next
		next++
		walk(2*i + 2)
	}
	walk(0)
	return ranks
}

type layoutBuilder struct {
	keys     []int32 // sorted input
	bfsRanks []int32 // in-order rank per BFS position
	layout   []int32
	ranks    []int32
	pos      int    // next free slot in layout/ranks
	depths   [3]int // block levels per blocking granularity: SIMD, cache line, page
}

// emit lays out the subtree rooted at BFS index root with remaining
// levels below it, blocked at the given granularity (0 = SIMD,
// 1 = cache line, 2 = page). The top block of up to depths[level] levels
// is emitted at the next finer granularity (plain BFS once at the SIMD
// level), then each subtree hanging below the block is emitted in full
// at this granularity before the next one starts. A shallow tree simply
// degenerates: min() truncates the block and leaves no child subtrees,
// so the top-level call is always made at page granularity.
func (b *layoutBuilder) emit(root, remaining, level int) {
	if remaining <= 0 {
		return
	}

	if level == 0 {
		d := min(remaining, simdLevels)
		b.emitBFS(root, d)
		if remaining > d {
			for _, child := range childRoots(root, d) {
				b.emit(child, remaining-d, 0)
			}
		}
		return
	}

	d := min(remaining, b.depths[level])
	b.emit(root, d, level-1)
	if remaining > d {
		for _, child := range childRoots(root, d) {
			b.emit(child, remaining-d, level)
		}
	}
}

// emitBFS writes the top `levels` levels of the subtree rooted at the
// given BFS index contiguously, filling layout and rank map together.
func (b *layoutBuilder) emitBFS(root, levels int) {
	for lvl := 0; lvl < levels; lvl++ {
		first := (root+1)<<lvl - 1
		for i := 0; i < 1<<lvl; i++ {
			rank := b.bfsRanks[first+i]
			if int(rank) < len(b.keys) {
				b.layout[b.pos] = b.keys[rank]
				b.ranks[b.pos] = rank
			} else {
				b.layout[b.pos] = sentinel
				b.ranks[b.pos] = int32(len(b.keys))
			}
			b.pos++
		}
	}
}

// childRoots returns the BFS indices of the 2^levels subtree roots
// sitting `levels` levels below root.
func childRoots(root, levels int) []int {
	count := 1 << levels
	first := (root+1)<<levels - 1
	children := make([]int, count)
	for i := range children {
		children[i] = first + i
	}
	return children
}
