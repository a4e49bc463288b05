package fastidx

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// sortedKeysGen produces non-empty sorted key slices, duplicates and
// negative keys included.
func sortedKeysGen() gopter.Gen {
	return gen.SliceOf(gen.Int32Range(-1000, 1000)).
		SuchThat(func(keys []int32) bool { return len(keys) > 0 }).
		Map(func(keys []int32) []int32 {
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
			return keys
		})
}

// TestSearchInvariants drives the query contracts with generated key
// sets instead of hand-picked ones.
func TestSearchInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("predecessor contract holds for any query", prop.ForAll(
		func(keys []int32, q int32) bool {
			tree, err := New(keys)
			if err != nil {
				return false
			}
			defer tree.Close()

			n := int64(len(keys))
			r := tree.Search(q)
			if r == -1 {
				return q < keys[0]
			}
			if r < 0 || r >= n || keys[r] > q {
				return false
			}
			if r+1 < n && keys[r+1] <= q {
				// Inside a run of keys equal to the query any position
				// of the run is a valid answer.
				return keys[r] == q && keys[r+1] == q
			}
			return true
		},
		sortedKeysGen(),
		gen.Int32Range(-1100, 1100),
	))

	properties.Property("lower bound contract holds for any query", prop.ForAll(
		func(keys []int32, q int32) bool {
			tree, err := New(keys)
			if err != nil {
				return false
			}
			defer tree.Close()

			n := int64(len(keys))
			r := tree.LowerBound(q)
			if r == n {
				return q > keys[n-1]
			}
			if r < 0 || r > n || keys[r] < q {
				return false
			}
			return r == 0 || keys[r-1] < q
		},
		sortedKeysGen(),
		gen.Int32Range(-1100, 1100),
	))

	properties.Property("search is monotonic in the query", prop.ForAll(
		func(keys []int32, q1, q2 int32) bool {
			if q1 > q2 {
				q1, q2 = q2, q1
			}
			tree, err := New(keys)
			if err != nil {
				return false
			}
			defer tree.Close()

			return tree.Search(q1) <= tree.Search(q2)
		},
		sortedKeysGen(),
		gen.Int32Range(-1100, 1100),
		gen.Int32Range(-1100, 1100),
	))

	properties.Property("searching an existing key finds its run", prop.ForAll(
		func(keys []int32) bool {
			tree, err := New(keys)
			if err != nil {
				return false
			}
			defer tree.Close()

			for _, k := range keys {
				r := tree.Search(k)
				if r < 0 || r >= int64(len(keys)) {
					return false
				}
				// Equal keys form one contiguous run, so matching the
				// key proves the answer landed inside it.
				if tree.KeyAt(r) != k {
					return false
				}
			}
			return true
		},
		sortedKeysGen(),
	))

	properties.Property("lower bound and predecessor agree", prop.ForAll(
		func(keys []int32, q int32) bool {
			tree, err := New(keys)
			if err != nil {
				return false
			}
			defer tree.Close()

			// Every key at or after LowerBound(q) is >= q, and the
			// predecessor of q-1 only sees keys < q, so it must land
			// strictly below the lower bound.
			return tree.Search(q-1) < tree.LowerBound(q)
		},
		sortedKeysGen(),
		gen.Int32Range(-1100, 1100),
	))

	properties.TestingRun(t)
}
