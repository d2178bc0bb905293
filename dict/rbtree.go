package dict

type rbColor bool

const (
	red   rbColor = true
	black rbColor = false
)

// rbNode is a red-black tree node with an explicit parent back-pointer.
// The back-pointer exists purely for upward navigation during the
// insert/delete fixups; it is not an ownership link (spec.md §9).
type rbNode[T any] struct {
	item               T
	color              rbColor
	left, right, paren *rbNode[T]
}

// rbtree uses a single allocated sentinel that doubles as the nil leaf and
// the parent of the real root (spec.md §4.4). The sentinel is always
// black; its right child is the actual root; its left points to itself.
// This removes nil checks from every rotation and recoloring: reading the
// sentinel's color always yields black.
type rbtree[T any] struct {
	nilNode *rbNode[T]
	count   int
	h       Handler[T]
}

func newRBTree[T any](h Handler[T]) *rbtree[T] {
	nilNode := &rbNode[T]{color: black}
	nilNode.left = nilNode
	nilNode.right = nilNode
	nilNode.paren = nilNode
	return &rbtree[T]{nilNode: nilNode, h: h}
}

func (d *rbtree[T]) root() *rbNode[T] { return d.nilNode.right }

func (d *rbtree[T]) setRoot(n *rbNode[T]) {
	d.nilNode.right = n
	n.paren = d.nilNode
}

func (d *rbtree[T]) rotateLeft(x *rbNode[T]) {
	y := x.right
	x.right = y.left
	if y.left != d.nilNode {
		y.left.paren = x
	}
	y.paren = x.paren
	if x.paren == d.nilNode {
		d.setRoot(y)
	} else if x == x.paren.left {
		x.paren.left = y
	} else {
		x.paren.right = y
	}
	y.left = x
	x.paren = y
}

func (d *rbtree[T]) rotateRight(x *rbNode[T]) {
	y := x.left
	x.left = y.right
	if y.right != d.nilNode {
		y.right.paren = x
	}
	y.paren = x.paren
	if x.paren == d.nilNode {
		d.setRoot(y)
	} else if x == x.paren.right {
		x.paren.right = y
	} else {
		x.paren.left = y
	}
	y.right = x
	x.paren = y
}

func (d *rbtree[T]) Insert(item T) InsertAction {
	nilNode := d.nilNode
	y := nilNode
	x := d.root()
	for x != nilNode {
		y = x
		c := d.h.Compare(item, x.item)
		switch {
		case c == 0:
			d.h.Destroy(x.item)
			x.item = item
			return Replaced
		case c < 0:
			x = x.left
		default:
			x = x.right
		}
	}

	z := &rbNode[T]{item: item, color: red, left: nilNode, right: nilNode, paren: y}
	if y == nilNode {
		d.setRoot(z)
	} else if d.h.Compare(item, y.item) < 0 {
		y.left = z
	} else {
		y.right = z
	}
	d.count++
	d.insertFixup(z)
	d.verify("after insert")
	return InsertedNew
}

func (d *rbtree[T]) insertFixup(z *rbNode[T]) {
	for z.paren.color == red {
		if z.paren == z.paren.paren.left {
			uncle := z.paren.paren.right
			if uncle.color == red {
				z.paren.color = black
				uncle.color = black
				z.paren.paren.color = red
				z = z.paren.paren
				continue
			}
			if z == z.paren.right {
				z = z.paren
				d.rotateLeft(z)
			}
			z.paren.color = black
			z.paren.paren.color = red
			d.rotateRight(z.paren.paren)
		} else {
			uncle := z.paren.paren.left
			if uncle.color == red {
				z.paren.color = black
				uncle.color = black
				z.paren.paren.color = red
				z = z.paren.paren
				continue
			}
			if z == z.paren.left {
				z = z.paren
				d.rotateRight(z)
			}
			z.paren.color = black
			z.paren.paren.color = red
			d.rotateLeft(z.paren.paren)
		}
	}
	d.root().color = black
	d.nilNode.color = black
}

func (d *rbtree[T]) find(key T) *rbNode[T] {
	n := d.root()
	for n != d.nilNode {
		c := d.h.Compare(key, n.item)
		switch {
		case c == 0:
			return n
		case c < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil
}

func (d *rbtree[T]) Search(key T) (T, bool) {
	n := d.find(key)
	if n == nil {
		var zero T
		return zero, false
	}
	return n.item, true
}

func (d *rbtree[T]) transplant(u, v *rbNode[T]) {
	if u.paren == d.nilNode {
		d.setRoot(v)
	} else if u == u.paren.left {
		u.paren.left = v
	} else {
		u.paren.right = v
	}
	v.paren = u.paren
}

func (d *rbtree[T]) minimum(n *rbNode[T]) *rbNode[T] {
	for n.left != d.nilNode {
		n = n.left
	}
	return n
}

func (d *rbtree[T]) Remove(key T) (T, bool) {
	z := d.find(key)
	if z == nil {
		var zero T
		return zero, false
	}
	removed := z.item

	y := z
	yOriginalColor := y.color
	var x *rbNode[T]

	if z.left == d.nilNode {
		x = z.right
		d.transplant(z, z.right)
	} else if z.right == d.nilNode {
		x = z.left
		d.transplant(z, z.left)
	} else {
		y = d.minimum(z.right)
		yOriginalColor = y.color
		x = y.right
		if y.paren == z {
			x.paren = y
		} else {
			d.transplant(y, y.right)
			y.right = z.right
			y.right.paren = y
		}
		d.transplant(z, y)
		y.left = z.left
		y.left.paren = y
		y.color = z.color
	}

	if yOriginalColor == black {
		d.deleteFixup(x)
	}
	d.nilNode.color = black
	d.count--
	d.verify("after remove")
	return removed, true
}

func (d *rbtree[T]) deleteFixup(x *rbNode[T]) {
	for x != d.root() && x.color == black {
		if x == x.paren.left {
			w := x.paren.right
			if w.color == red {
				w.color = black
				x.paren.color = red
				d.rotateLeft(x.paren)
				w = x.paren.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.paren
				continue
			}
			if w.right.color == black {
				w.left.color = black
				w.color = red
				d.rotateRight(w)
				w = x.paren.right
			}
			w.color = x.paren.color
			x.paren.color = black
			w.right.color = black
			d.rotateLeft(x.paren)
			x = d.root()
		} else {
			w := x.paren.left
			if w.color == red {
				w.color = black
				x.paren.color = red
				d.rotateRight(x.paren)
				w = x.paren.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.paren
				continue
			}
			if w.left.color == black {
				w.right.color = black
				w.color = red
				d.rotateLeft(w)
				w = x.paren.left
			}
			w.color = x.paren.color
			x.paren.color = black
			w.left.color = black
			d.rotateRight(x.paren)
			x = d.root()
		}
	}
	x.color = black
}

func (d *rbtree[T]) Count() int { return d.count }

func (d *rbtree[T]) Iterator() Iterator[T] {
	it := &rbIterator[T]{nilNode: d.nilNode}
	it.pushLeftmostSpine(d.root())
	return it
}

func (d *rbtree[T]) Destroy() {
	d.destroySubtree(d.root())
	d.nilNode.right = d.nilNode
	d.count = 0
}

func (d *rbtree[T]) destroySubtree(n *rbNode[T]) {
	if n == d.nilNode {
		return
	}
	d.destroySubtree(n.left)
	d.destroySubtree(n.right)
	d.h.Destroy(n.item)
}

type rbIterator[T any] struct {
	nilNode *rbNode[T]
	stack   []*rbNode[T]
}

func (it *rbIterator[T]) pushLeftmostSpine(n *rbNode[T]) {
	for n != it.nilNode {
		it.stack = append(it.stack, n)
		n = n.left
	}
}

func (it *rbIterator[T]) Next() (T, bool) {
	if len(it.stack) == 0 {
		var zero T
		return zero, false
	}
	n := it.stack[len(it.stack)-1]
	it.stack = it.stack[:len(it.stack)-1]
	it.pushLeftmostSpine(n.right)
	return n.item, true
}

// verify runs the debug-only structural checker described in spec.md §4.4:
// parent back-links consistent, no red node has a red child, every
// root-to-sentinel path has equal black depth, root and sentinel black.
func (d *rbtree[T]) verify(when string) {
	if !debugAssertions {
		return
	}
	assertInvariant(d.nilNode.color == black, "sentinel is not black (%s)", when)
	assertInvariant(d.root().color == black, "root is not black (%s)", when)

	var walk func(n *rbNode[T]) int
	walk = func(n *rbNode[T]) int {
		if n == d.nilNode {
			return 1
		}
		assertInvariant(n.left == d.nilNode || n.left.paren == n, "broken parent link (%s)", when)
		assertInvariant(n.right == d.nilNode || n.right.paren == n, "broken parent link (%s)", when)
		if n.color == red {
			assertInvariant(n.left.color == black && n.right.color == black, "red node with red child (%s)", when)
		}
		lb := walk(n.left)
		rb := walk(n.right)
		assertInvariant(lb == rb, "unequal black height (%s)", when)
		if n.color == black {
			return lb + 1
		}
		return lb
	}
	walk(d.root())
}
