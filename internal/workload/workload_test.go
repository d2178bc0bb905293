package workload

import (
	"testing"

	"github.com/spsoft/spdict/cache"
	"github.com/spsoft/spdict/dict"
)

func Test_DriveDict_EveryKind_FinalCountIsNonNegative(t *testing.T) {
	for _, kind := range []dict.Kind{dict.BST, dict.RBT, dict.BTree, dict.SkipList, dict.SortedArray} {
		res := DriveDict(kind, 2000, 7)
		if res.FinalCount < 0 {
			t.Fatalf("%s: FinalCount = %d, want >= 0", kind, res.FinalCount)
		}
		if res.Inserted+res.Replaced == 0 {
			t.Fatalf("%s: no inserts or replaces recorded over 2000 ops", kind)
		}
	}
}

func Test_DriveDict_SameSeed_IsReproducible(t *testing.T) {
	a := DriveDict(dict.RBT, 500, 42)
	b := DriveDict(dict.RBT, 500, 42)
	if a != b {
		t.Fatalf("same seed produced different results: %+v vs %+v", a, b)
	}
}

func Test_DriveCache_RespectsCapacity(t *testing.T) {
	for _, policy := range []cache.Policy{cache.FIFO, cache.LRU} {
		stats := DriveCache(dict.RBT, policy, 16, 5000, 11)
		if stats.Size > 16 {
			t.Fatalf("%s: Size = %d, want <= 16", policy, stats.Size)
		}
	}
}
