package syntax

// Visitor receives a completed top-level node (a function, type definition,
// variable, or context block) each time the parser finishes building one,
// in construction order. It is the extension point spec.md's GLSL/HLSL
// transpilers would hang off of; no such backend ships here, only the
// dispatch contract and a recording test double (see visitor_test.go).
type Visitor interface {
	Visit(n *Node)
}

// VisitorFunc adapts a plain function to the Visitor interface.
type VisitorFunc func(n *Node)

func (f VisitorFunc) Visit(n *Node) { f(n) }

// Dispatcher fans a completed node out to every registered Visitor, in
// registration order, whatever its Entity; each Visitor switches on
// n.Entity itself, the way the teacher's Generate() type-switches on a
// node's concrete type.
type Dispatcher struct {
	visitors []Visitor
}

func NewDispatcher(visitors ...Visitor) *Dispatcher {
	return &Dispatcher{visitors: visitors}
}

func (d *Dispatcher) Register(v Visitor) {
	d.visitors = append(d.visitors, v)
}

// Notify is called by the parser once a top-level node is fully built.
func (d *Dispatcher) Notify(n *Node) {
	for _, v := range d.visitors {
		v.Visit(n)
	}
}
