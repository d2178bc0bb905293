// Command spdict drives a randomized workload against one dictionary
// engine, or against an in-memory cache layered on top of one, and
// reports the result. It exists as a smoke-test harness: exit 0 means
// the requested engine ran the requested workload without panicking.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/spsoft/spdict/cache"
	"github.com/spsoft/spdict/dict"
	"github.com/spsoft/spdict/internal/workload"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "spdict:", err)
		os.Exit(1)
	}
}

func run(args []string, out *os.File) error {
	fs := pflag.NewFlagSet("spdict", pflag.ContinueOnError)
	kindFlag := fs.StringP("type", "t", "rb", "dict engine: bst|rb|bt|sl|sa")
	count := fs.IntP("count", "c", 10000, "number of operations to run")
	algoFlag := fs.StringP("algo", "a", "", "cache policy: FIFO|LRU (omit to drive the bare dict)")
	size := fs.IntP("size", "s", 100, "cache capacity, ignored without -a")
	seed := fs.Uint64("seed", 1, "workload RNG seed")

	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, err := dict.ParseKind(*kindFlag)
	if err != nil {
		return err
	}

	if *algoFlag == "" {
		res := workload.DriveDict(kind, *count, *seed)
		fmt.Fprintf(out, "dict kind=%s ops=%d inserted=%d replaced=%d removed=%d final_count=%d\n",
			kind, *count, res.Inserted, res.Replaced, res.Removed, res.FinalCount)
		return nil
	}

	policy, err := parsePolicy(*algoFlag)
	if err != nil {
		return err
	}
	stats := workload.DriveCache(kind, policy, *size, *count, *seed)
	fmt.Fprintf(out, "cache kind=%s policy=%s capacity=%d ops=%d size=%d accesses=%d hits=%d evictions=%d\n",
		kind, policy, *size, *count, stats.Size, stats.Accesses, stats.Hits, stats.Evictions)
	return nil
}

func parsePolicy(s string) (cache.Policy, error) {
	switch s {
	case "FIFO":
		return cache.FIFO, nil
	case "LRU":
		return cache.LRU, nil
	default:
		return 0, fmt.Errorf("spdict: unknown policy %q (want FIFO or LRU)", s)
	}
}
