package dict

import (
	"math/rand/v2"
	"sort"
	"testing"
)

// intItem is a minimal test item: a key plus a destroyed flag so tests can
// assert ownership transfer (destroy called exactly once, or never, per
// spec.md §3's ownership contract).
type intItem struct {
	key       int
	destroyed *bool
}

func intHandler() Handler[intItem] {
	return Handler[intItem]{
		Compare: func(a, b intItem) int { return a.key - b.key },
		Destroy: func(item intItem) {
			if item.destroyed != nil {
				*item.destroyed = true
			}
		},
	}
}

func item(key int) intItem { return intItem{key: key} }

var allKinds = []Kind{BST, RBT, BTree, SkipList, SortedArray}

func Test_Dict_RoundTrip_YieldsComparatorOrder(t *testing.T) {
	t.Parallel()

	for _, kind := range allKinds {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			d := New(kind, intHandler())
			defer d.Destroy()

			keys := rand.Perm(200)
			seen := map[int]bool{}
			for _, k := range keys {
				if seen[k] {
					continue
				}
				seen[k] = true
				if action := d.Insert(item(k)); action != InsertedNew {
					t.Fatalf("insert %d: got %v, want InsertedNew", k, action)
				}
			}

			if got, want := d.Count(), len(seen); got != want {
				t.Fatalf("Count() = %d, want %d", got, want)
			}

			var want []int
			for k := range seen {
				want = append(want, k)
			}
			sort.Ints(want)

			var got []int
			it := d.Iterator()
			for {
				v, ok := it.Next()
				if !ok {
					break
				}
				got = append(got, v.key)
			}

			if len(got) != len(want) {
				t.Fatalf("iterator yielded %d items, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("iterator[%d] = %d, want %d", i, got[i], want[i])
				}
			}
		})
	}
}

func Test_Dict_IdempotentInsert_ReplacesValueNotCount(t *testing.T) {
	t.Parallel()

	for _, kind := range allKinds {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			d := New(kind, intHandler())
			defer d.Destroy()

			d.Insert(item(5))
			if d.Count() != 1 {
				t.Fatalf("Count() = %d, want 1", d.Count())
			}

			var destroyed bool
			second := intItem{key: 5, destroyed: &destroyed}
			if action := d.Insert(second); action != Replaced {
				t.Fatalf("second insert: got %v, want Replaced", action)
			}
			if d.Count() != 1 {
				t.Fatalf("Count() after replace = %d, want 1", d.Count())
			}

			got, ok := d.Search(item(5))
			if !ok {
				t.Fatal("Search(5): not found")
			}
			if got.destroyed != &destroyed {
				t.Fatal("Search(5) did not return the replacement value")
			}
		})
	}
}

func Test_Dict_InsertSearchRemove_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, kind := range allKinds {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			d := New(kind, intHandler())
			defer d.Destroy()

			d.Insert(item(42))

			got, ok := d.Search(item(42))
			if !ok || got.key != 42 {
				t.Fatalf("Search(42) = %v, %v", got, ok)
			}

			removed, ok := d.Remove(item(42))
			if !ok || removed.key != 42 {
				t.Fatalf("Remove(42) = %v, %v", removed, ok)
			}

			if _, ok := d.Search(item(42)); ok {
				t.Fatal("Search(42) found item after Remove")
			}
		})
	}
}

func Test_Dict_InterleavedMutation_CountMatchesLiveSet(t *testing.T) {
	t.Parallel()

	for _, kind := range allKinds {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			d := New(kind, intHandler())
			defer d.Destroy()

			live := map[int]bool{}
			rng := rand.New(rand.NewPCG(1, 2))
			for i := 0; i < 2000; i++ {
				k := rng.IntN(100)
				if rng.IntN(2) == 0 {
					d.Insert(item(k))
					live[k] = true
				} else {
					d.Remove(item(k))
					delete(live, k)
				}
			}

			if got, want := d.Count(), len(live); got != want {
				t.Fatalf("Count() = %d, want %d", got, want)
			}
		})
	}
}

func Test_Dict_Destroy_CallsDestroyerForEveryItem(t *testing.T) {
	t.Parallel()

	for _, kind := range allKinds {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			d := New(kind, intHandler())

			flags := make([]bool, 50)
			for i := range flags {
				d.Insert(intItem{key: i, destroyed: &flags[i]})
			}

			d.Destroy()

			for i, destroyed := range flags {
				if !destroyed {
					t.Fatalf("item %d not destroyed", i)
				}
			}
		})
	}
}

// Test_BTree_SplitCascade is scenario S1: rank 4, keys 1..12 in order.
func Test_BTree_SplitCascade(t *testing.T) {
	t.Parallel()

	bt := newBTree(intHandler(), 4)
	for k := 1; k <= 12; k++ {
		bt.Insert(item(k))
	}

	height := 0
	for n := bt.root; n != nil; n = firstChildOrNil(n) {
		height++
		if n.isLeaf() {
			if len(n.items) != 2 {
				t.Fatalf("leaf has %d items, want 2", len(n.items))
			}
			break
		}
	}
	if height != 3 {
		t.Fatalf("height = %d, want 3", height)
	}

	var got []int
	it := bt.Iterator()
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v.key)
	}
	for i, want := range []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12} {
		if got[i] != want {
			t.Fatalf("iteration[%d] = %d, want %d", i, got[i], want)
		}
	}
}

func firstChildOrNil[T any](n *btreeNode[T]) *btreeNode[T] {
	if n.isLeaf() {
		return nil
	}
	return n.children[0]
}

// Test_RBTree_Rotate is scenario S2: insert 10, 20, 30 in order.
func Test_RBTree_Rotate(t *testing.T) {
	t.Parallel()

	rb := newRBTree(intHandler())
	rb.Insert(item(10))
	rb.Insert(item(20))
	rb.Insert(item(30))

	root := rb.root()
	if root.item.key != 20 || root.color != black {
		t.Fatalf("root = %d (color %v), want 20 black", root.item.key, root.color)
	}
	if root.left.item.key != 10 || root.left.color != red {
		t.Fatalf("root.left = %d (color %v), want 10 red", root.left.item.key, root.left.color)
	}
	if root.right.item.key != 30 || root.right.color != red {
		t.Fatalf("root.right = %d (color %v), want 30 red", root.right.item.key, root.right.color)
	}

	rb.verify("test")
}

// Test_SkipList_ReplaceSameKey is scenario S3.
func Test_SkipList_ReplaceSameKey(t *testing.T) {
	t.Parallel()

	sl := newSkipList(intHandler(), DefaultMaxLevel)
	sl.Insert(item(1))
	if action := sl.Insert(item(1)); action != Replaced {
		t.Fatalf("second insert: got %v, want Replaced", action)
	}
	if sl.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", sl.Count())
	}
}

func Test_ParseKind_RoundTrips(t *testing.T) {
	t.Parallel()

	for _, kind := range allKinds {
		got, err := ParseKind(kind.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", kind.String(), err)
		}
		if got != kind {
			t.Fatalf("ParseKind(%q) = %v, want %v", kind.String(), got, kind)
		}
	}

	if _, err := ParseKind("nope"); err == nil {
		t.Fatal("ParseKind(\"nope\") succeeded, want error")
	}
}
