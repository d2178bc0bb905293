// Package workload generates randomized operation sequences that drive
// every dict engine and both cache policies, for use by package tests and
// by cmd/spdict. Sequences are seeded so a run is reproducible given the
// same seed, but no guarantee is made across package versions.
package workload

import (
	"math/rand/v2"

	"github.com/spsoft/spdict/cache"
	"github.com/spsoft/spdict/dict"
)

// DictResult summarizes one randomized run against a dict engine.
type DictResult struct {
	Inserted   int
	Replaced   int
	Removed    int
	FinalCount int
}

// DriveDict issues ops random insert/remove calls against a fresh
// dictionary of the given kind, with keys drawn from [0, ops/2] so
// collisions (replaces and removes-of-absent-keys) are common.
func DriveDict(kind dict.Kind, ops int, seed uint64) DictResult {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	keySpace := ops/2 + 1

	h := dict.Handler[int]{
		Compare: func(a, b int) int { return a - b },
		Destroy: func(int) {},
	}
	d := dict.New(kind, h)
	defer d.Destroy()

	var res DictResult
	for i := 0; i < ops; i++ {
		key := rng.IntN(keySpace)
		if rng.IntN(3) == 0 {
			if _, ok := d.Remove(key); ok {
				res.Removed++
			}
			continue
		}
		if d.Insert(key) == dict.InsertedNew {
			res.Inserted++
		} else {
			res.Replaced++
		}
	}
	res.FinalCount = d.Count()
	return res
}

// DriveCache issues ops random put/get calls against a fresh in-memory
// cache of the given engine and policy, bounded to capacity.
func DriveCache(kind dict.Kind, policy cache.Policy, capacity, ops int, seed uint64) cache.Statistics {
	rng := rand.New(rand.NewPCG(seed, seed^0xd6e8feb86659fd93))
	keySpace := capacity*4 + 1

	h := cache.Handler[int, int]{
		Compare: func(a, b int) int { return a - b },
		Destroy: func(int) {},
		OnHit:   func(item int, out *int) { *out = item },
	}
	c := cache.New[int, int](kind, policy, capacity, h)
	defer c.Destroy()

	var out int
	for i := 0; i < ops; i++ {
		key := rng.IntN(keySpace)
		if rng.IntN(2) == 0 {
			c.Put(key, key*10, 0)
		} else {
			c.Get(key, &out)
		}
	}
	return c.Statistics()
}
