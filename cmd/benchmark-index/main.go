package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/dd0wney/cluso-fastindex/pkg/fastidx"
	"github.com/dd0wney/cluso-fastindex/pkg/keyfile"
)

func main() {
	count := flag.Int("keys", 1000000, "Number of keys to index (ignored with -keyfile)")
	queries := flag.Int("queries", 1000000, "Number of queries to run")
	keyPath := flag.String("keyfile", "", "Load keys from this key file instead of generating them")
	seed := flag.Int64("seed", 42, "RNG seed for generated keys and queries")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	var keys []int32
	if *keyPath != "" {
		loaded, err := keyfile.Load(*keyPath)
		if err != nil {
			log.Fatalf("Failed to load key file: %v", err)
		}
		keys = loaded
	} else {
		keys = generateKeys(rng, *count)
	}
	if len(keys) == 0 {
		log.Fatal("No keys to index")
	}

	fmt.Printf("Cluso FastIndex Benchmark\n")
	fmt.Printf("=========================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Keys:    %d\n", len(keys))
	fmt.Printf("  Queries: %d\n\n", *queries)

	// Build
	fmt.Printf("Building blocked index...\n")
	start := time.Now()
	tree, err := fastidx.New(keys)
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}
	defer tree.Close()
	buildTime := time.Since(start)

	st := tree.Stats()
	fmt.Printf("Built in %v\n", buildTime)
	fmt.Printf("  Tree depth:       %d\n", st.Depth)
	fmt.Printf("  Padded nodes:     %d\n", st.PaddedNodes)
	fmt.Printf("  Layout footprint: %d bytes\n", st.LayoutBytes)
	fmt.Printf("  Page block depth: %d\n\n", st.PageBlockDepth)

	qs := make([]int32, *queries)
	span := int(keys[len(keys)-1]-keys[0]) + 2
	for i := range qs {
		qs[i] = keys[0] + int32(rng.Intn(span)) - 1
	}

	// Benchmark 1: blocked traversal
	fmt.Printf("Benchmark 1: Blocked Predecessor Search\n")
	start = time.Now()
	var sink int64
	for _, q := range qs {
		sink += tree.Search(q)
	}
	blocked := time.Since(start)
	report(blocked, *queries)

	// Benchmark 2: plain binary search baseline
	fmt.Printf("Benchmark 2: Binary Search Baseline\n")
	start = time.Now()
	for _, q := range qs {
		qq := q
		sink += int64(sort.Search(len(keys), func(j int) bool { return keys[j] > qq })) - 1
	}
	baseline := time.Since(start)
	report(baseline, *queries)

	if blocked > 0 {
		fmt.Printf("Speedup over binary search: %.2fx\n", float64(baseline)/float64(blocked))
	}
	_ = sink

	// Cross-check a sample against the baseline before trusting numbers.
	checked := min(10000, len(qs))
	for i := 0; i < checked; i++ {
		q := qs[i]
		want := int64(sort.Search(len(keys), func(j int) bool { return keys[j] > q })) - 1
		if got := tree.Search(q); got != want {
			log.Fatalf("Verification failed: Search(%d) = %d, binary search says %d", q, got, want)
		}
	}
	fmt.Printf("Verification passed on %d sampled queries\n", checked)
}

func generateKeys(rng *rand.Rand, n int) []int32 {
	keys := make([]int32, n)
	v := int32(0)
	for i := range keys {
		v += int32(rng.Intn(8) + 1)
		keys[i] = v
	}
	return keys
}

func report(d time.Duration, queries int) {
	fmt.Printf("  %d queries in %v\n", queries, d)
	fmt.Printf("  %.1f ns/query\n", float64(d.Nanoseconds())/float64(queries))
	fmt.Printf("  %.0f queries/sec\n\n", float64(queries)/d.Seconds())
}
