// Package dict implements a uniform ordered-dictionary interface over five
// interchangeable engines: an unbalanced binary search tree, a red-black
// tree, a B-tree, a skip list, and a sorted array.
//
// Every engine stores opaque items of type T. Ordering and teardown are
// supplied by the caller through a [Handler]; the dictionary never inspects
// an item's fields directly. Ownership of an item transfers to the
// dictionary on a successful [Dict.Insert] and back to the caller on
// [Dict.Remove].
package dict

import "fmt"

// Comparator yields a strict total order over items: negative if a < b,
// zero if a == b, positive if a > b.
type Comparator[T any] func(a, b T) int

// Destroyer releases resources owned by item. It is called when an item is
// overwritten by [Dict.Insert] or when the whole dictionary is torn down by
// [Dict.Destroy]. It is never called for an item returned by [Dict.Remove];
// ownership of that item reverts to the caller instead.
type Destroyer[T any] func(item T)

// Handler bundles the comparator and destroyer a dictionary needs for its
// entire lifetime. A dictionary owns exactly one Handler instance.
type Handler[T any] struct {
	Compare Comparator[T]
	Destroy Destroyer[T]
}

// InsertAction reports whether Insert placed a new item or replaced an
// existing key-equal one.
type InsertAction int

const (
	// InsertedNew means no key-equal item existed; the new item was placed.
	InsertedNew InsertAction = iota
	// Replaced means a key-equal item existed, was destroyed, and the new
	// item was installed at the same logical position.
	Replaced
)

func (a InsertAction) String() string {
	if a == Replaced {
		return "Replaced"
	}
	return "InsertedNew"
}

// Kind selects an engine implementation for [New].
type Kind int

const (
	BST Kind = iota
	RBT
	BTree
	SkipList
	SortedArray
)

func (k Kind) String() string {
	switch k {
	case BST:
		return "bst"
	case RBT:
		return "rb"
	case BTree:
		return "bt"
	case SkipList:
		return "sl"
	case SortedArray:
		return "sa"
	default:
		return fmt.Sprintf("dict.Kind(%d)", int(k))
	}
}

// ParseKind maps the CLI -t flag values onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "bst":
		return BST, nil
	case "rb":
		return RBT, nil
	case "bt":
		return BTree, nil
	case "sl":
		return SkipList, nil
	case "sa":
		return SortedArray, nil
	default:
		return 0, fmt.Errorf("dict: unknown kind %q", s)
	}
}

// Iterator yields every item of a dictionary in comparator order exactly
// once. Behavior is undefined if the underlying dictionary is mutated while
// an Iterator is in use.
type Iterator[T any] interface {
	// Next advances the iterator and reports whether an item was produced.
	Next() (item T, ok bool)
}

// Dict is the uniform ordered-dictionary contract implemented by every
// engine in this package. No method returns an error for absence; absence
// is reported in-band via the boolean/action return. The only error
// condition is [InvariantViolation], raised only when debug assertions
// (build tag spdictdebug) are enabled and detect structural corruption.
type Dict[T any] interface {
	// Insert takes ownership of item on success. If a key-equal item is
	// already present, it is destroyed and item takes its place.
	Insert(item T) InsertAction

	// Search returns a read-only view of the stored item, if present. The
	// result is invalidated by any subsequent mutating call.
	Search(key T) (item T, ok bool)

	// Remove detaches the stored item and returns ownership to the caller.
	// The caller is responsible for destroying it.
	Remove(key T) (item T, ok bool)

	// Count returns the number of live items in O(1).
	Count() int

	// Iterator returns a fresh in-order iterator over the current items.
	Iterator() Iterator[T]

	// Destroy tears down the dictionary, destroying every remaining item.
	Destroy()
}

// New constructs a dictionary of the requested kind.
func New[T any](kind Kind, h Handler[T]) Dict[T] {
	switch kind {
	case BST:
		return newBST(h)
	case RBT:
		return newRBTree(h)
	case BTree:
		return newBTree(h, DefaultRank)
	case SkipList:
		return newSkipList(h, DefaultMaxLevel)
	case SortedArray:
		return newSortedArray(h)
	default:
		panic(fmt.Sprintf("dict: unknown kind %d", int(kind)))
	}
}

// InvariantViolation reports structural corruption detected by a debug-only
// verifier. It is never returned; it is always the argument to a panic, and
// is not meant to be recovered from — a corrupted engine cannot be trusted
// to continue operating.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string {
	return "dict: invariant violation: " + e.Msg
}

func assertInvariant(cond bool, format string, args ...any) {
	if !debugAssertions || cond {
		return
	}
	panic(&InvariantViolation{Msg: fmt.Sprintf(format, args...)})
}
