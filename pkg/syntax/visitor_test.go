package syntax

import "testing"

func TestDispatcher_NotifyFanOut(t *testing.T) {
	var a, b []*Node
	d := NewDispatcher(
		VisitorFunc(func(n *Node) { a = append(a, n) }),
		VisitorFunc(func(n *Node) { b = append(b, n) }),
	)

	alloc := NewHostAllocator()
	fn := alloc.Create(DEFFunction)
	v := alloc.Create(DEFVariable)

	d.Notify(fn)
	d.Notify(v)

	if len(a) != 2 || a[0] != fn || a[1] != v {
		t.Fatalf("visitor a got %v, want [%p %p]", a, fn, v)
	}
	if len(b) != 2 || b[0] != fn || b[1] != v {
		t.Fatalf("visitor b got %v, want [%p %p]", b, fn, v)
	}
}

func TestDispatcher_RegisterAfterConstruction(t *testing.T) {
	d := NewDispatcher()
	var seen *Node
	d.Register(VisitorFunc(func(n *Node) { seen = n }))

	alloc := NewHostAllocator()
	n := alloc.Create(DEFVariable)
	d.Notify(n)

	if seen != n {
		t.Fatalf("got %p, want %p", seen, n)
	}
}
