//go:build !spdictdebug

package dict

// debugAssertions is off by default. Build with -tags spdictdebug to enable
// the O(n) structural verifiers (red-black color/height invariants, B-tree
// occupancy bounds) after every mutation.
const debugAssertions = false
