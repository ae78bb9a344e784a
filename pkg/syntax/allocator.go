package syntax

import "fmt"

// Allocator is the contract every Node passes through on construction and
// teardown. The parser owns one allocator for the lifetime of a parse;
// whatever container receives the finished tree inherits that ownership
// (invariant 6): destruction, like construction, is the allocator's
// responsibility, never the Node's own.
type Allocator interface {
	// Create allocates and returns a fresh, zeroed Node tagged with entity.
	// Child/Sibling/Annotation start nil.
	Create(entity Entity) *Node
	// Destroy releases a single node (not its subtree) back to the
	// allocator; callers walking a subtree for teardown call Destroy on
	// each node individually.
	Destroy(n *Node)
	// Count reports the number of live (created, not yet destroyed) nodes.
	Count() int
}

// HostAllocator is the plain, non-pooling Allocator: every Create is a
// fresh heap allocation, every Destroy drops the reference and decrements
// the live count. AssertEmpty checks at teardown that the count has
// returned to zero, mirroring SyntaxNodeAllocator's allocate/deallocate
// bookkeeping pair.
type HostAllocator struct {
	live int
}

func NewHostAllocator() *HostAllocator { return &HostAllocator{} }

func (a *HostAllocator) Create(entity Entity) *Node {
	a.live++
	return &Node{Entity: entity}
}

func (a *HostAllocator) Destroy(n *Node) {
	if n == nil {
		return
	}
	a.live--
}

func (a *HostAllocator) Count() int { return a.live }

// AssertEmpty returns an error if any node created through 'a' was never destroyed,
// the allocator round-trip property from spec's testable properties
// (total allocations - total deallocations = 0 at teardown). Tests call
// this at the end of a parse/teardown cycle instead of asserting count
// inline everywhere.
func (a *HostAllocator) AssertEmpty() error {
	if a.live != 0 {
		return fmt.Errorf("syntax: allocator torn down with %d live node(s)", a.live)
	}
	return nil
}

// TrackingAllocator wraps a parent Allocator and retains every live
// pointer it hands out, so a whole batch can be released together at
// teardown without the caller walking the tree itself: an owner of the
// tree can free the entire batch with one ReleaseAll call.
type TrackingAllocator struct {
	parent Allocator
	live   map[*Node]struct{}
}

func NewTrackingAllocator(parent Allocator) *TrackingAllocator {
	return &TrackingAllocator{parent: parent, live: make(map[*Node]struct{})}
}

func (a *TrackingAllocator) Create(entity Entity) *Node {
	n := a.parent.Create(entity)
	a.live[n] = struct{}{}
	return n
}

func (a *TrackingAllocator) Destroy(n *Node) {
	if n == nil {
		return
	}
	delete(a.live, n)
	a.parent.Destroy(n)
}

func (a *TrackingAllocator) Count() int { return len(a.live) }

// ReleaseAll destroys every node still tracked, in no particular order,
// and empties the tracked set. Used for bulk teardown of an entire tree.
func (a *TrackingAllocator) ReleaseAll() {
	for n := range a.live {
		a.parent.Destroy(n)
	}
	a.live = make(map[*Node]struct{})
}
