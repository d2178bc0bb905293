package cache

import (
	"testing"

	"github.com/spsoft/spdict/dict"
)

func strHandler(destroyed map[string]bool) Handler[string, string] {
	return Handler[string, string]{
		Compare: func(a, b string) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		},
		Destroy: func(item string) {
			if destroyed != nil {
				destroyed[item] = true
			}
		},
		OnHit: func(item string, out *string) { *out = item },
	}
}

// Test_Cache_LRUEviction is scenario S4: capacity 2, LRU. Put A, put B,
// get A, put C. Evicted must be B; A and C remain hits, B a miss.
func Test_Cache_LRUEviction(t *testing.T) {
	c := New[string, string](dict.RBT, LRU, 2, strHandler(nil))

	c.Put("A", "a-value", 0)
	c.Put("B", "b-value", 0)

	var holder string
	if got := c.Get("A", &holder); got != Hit {
		t.Fatalf("get A = %v, want Hit", got)
	}

	c.Put("C", "c-value", 0)

	if got := c.Get("A", &holder); got != Hit {
		t.Fatalf("get A = %v, want Hit", got)
	}
	if got := c.Get("B", &holder); got != Miss {
		t.Fatalf("get B = %v, want Miss", got)
	}
	if got := c.Get("C", &holder); got != Hit {
		t.Fatalf("get C = %v, want Hit", got)
	}
}

// Test_Cache_FIFOEviction is scenario S5: same sequence, FIFO policy.
// Evicted must be A regardless of the intervening get.
func Test_Cache_FIFOEviction(t *testing.T) {
	c := New[string, string](dict.RBT, FIFO, 2, strHandler(nil))

	c.Put("A", "a-value", 0)
	c.Put("B", "b-value", 0)

	var holder string
	c.Get("A", &holder)

	c.Put("C", "c-value", 0)

	if got := c.Get("A", &holder); got != Miss {
		t.Fatalf("get A = %v, want Miss", got)
	}
	if got := c.Get("B", &holder); got != Hit {
		t.Fatalf("get B = %v, want Hit", got)
	}
	if got := c.Get("C", &holder); got != Hit {
		t.Fatalf("get C = %v, want Hit", got)
	}
}

// Test_Cache_LazyExpiration is scenario S6: an expired entry is reported a
// miss on the next Get, and is destroyed and dropped from Count at that
// point, not before.
func Test_Cache_LazyExpiration(t *testing.T) {
	destroyed := map[string]bool{}
	h := strHandler(destroyed)

	now := int64(1000)
	h.Now = func() int64 { return now }

	c := New[string, string](dict.RBT, FIFO, 0, h)
	c.Put("A", "a-value", now+1)

	if c.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", c.Count())
	}

	now += 2

	var holder string
	if got := c.Get("A", &holder); got != Miss {
		t.Fatalf("get A after expiry = %v, want Miss", got)
	}
	if c.Count() != 0 {
		t.Fatalf("Count() after expired get = %d, want 0", c.Count())
	}
	if !destroyed["a-value"] {
		t.Fatal("expired item was not destroyed")
	}
}

func Test_Cache_Put_ReplaceDestroysOldItemAndKeepsCount(t *testing.T) {
	destroyed := map[string]bool{}
	c := New[string, string](dict.RBT, LRU, 0, strHandler(destroyed))

	c.Put("K", "first", 0)
	if action := c.Put("K", "second", 0); action != Replaced {
		t.Fatalf("second put = %v, want Replaced", action)
	}
	if c.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", c.Count())
	}
	if !destroyed["first"] {
		t.Fatal("replaced item was not destroyed")
	}

	var holder string
	c.Get("K", &holder)
	if holder != "second" {
		t.Fatalf("get K = %q, want %q", holder, "second")
	}
}

func Test_Cache_Erase_DestroysAndRemoves(t *testing.T) {
	destroyed := map[string]bool{}
	c := New[string, string](dict.RBT, FIFO, 0, strHandler(destroyed))

	c.Put("K", "value", 0)
	if got := c.Erase("K"); got != Erased {
		t.Fatalf("Erase(K) = %v, want Erased", got)
	}
	if got := c.Erase("K"); got != NotPresent {
		t.Fatalf("second Erase(K) = %v, want NotPresent", got)
	}
	if !destroyed["value"] {
		t.Fatal("erased item was not destroyed")
	}
}

func Test_Cache_Remove_TransfersOwnershipWithoutDestroying(t *testing.T) {
	destroyed := map[string]bool{}
	c := New[string, string](dict.RBT, LRU, 0, strHandler(destroyed))

	c.Put("K", "value", 42)

	var expTime int64
	item, ok := c.Remove("K", &expTime)
	if !ok || item != "value" {
		t.Fatalf("Remove(K) = %q, %v", item, ok)
	}
	if expTime != 42 {
		t.Fatalf("expTime = %d, want 42", expTime)
	}
	if destroyed["value"] {
		t.Fatal("Remove must not destroy the detached item")
	}
	if c.Count() != 0 {
		t.Fatalf("Count() after Remove = %d, want 0", c.Count())
	}

	var holder string
	if got := c.Get("K", &holder); got != Miss {
		t.Fatalf("get K after Remove = %v, want Miss", got)
	}
}

func Test_Cache_Statistics_TracksAccessesAndHits(t *testing.T) {
	c := New[string, string](dict.RBT, FIFO, 0, strHandler(nil))
	c.Put("K", "value", 0)

	var holder string
	c.Get("K", &holder)
	c.Get("missing", &holder)

	stats := c.Statistics()
	if stats.Accesses != 2 {
		t.Fatalf("Accesses = %d, want 2", stats.Accesses)
	}
	if stats.Hits != 1 {
		t.Fatalf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Size != 1 {
		t.Fatalf("Size = %d, want 1", stats.Size)
	}
}

func Test_Cache_CapacityZero_NeverEvicts(t *testing.T) {
	c := New[string, string](dict.RBT, LRU, 0, strHandler(nil))
	for i := 0; i < 500; i++ {
		c.Put(string(rune('a'+(i%26)))+string(rune(i)), "v", 0)
	}
	if c.Count() != 500 {
		t.Fatalf("Count() = %d, want 500", c.Count())
	}
}
