package ast

// VisitDirection indicates whether a Visitor is being called on entry or
// exit of a Node during a Walk.
type VisitDirection bool

const (
	VisitEnter VisitDirection = true
	VisitExit  VisitDirection = false
)

// Visitor visits nodes of the AST. If Visit returns a non-nil Visitor on
// entering a node, Walk visits each child of that node with the returned
// Visitor, then calls Visit on the returned Visitor with VisitExit.
type Visitor interface {
	Visit(n Node, dir VisitDirection) Visitor
}

// VisitorFunc adapts a plain function to the Visitor interface, only called
// on VisitEnter.
type VisitorFunc func(n Node) bool

func (f VisitorFunc) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit {
		return nil
	}
	if f(n) {
		return f
	}
	return nil
}

// Walk traverses the AST in depth-first order, calling v.Visit on n and
// then, if the returned Visitor is non-nil, on each of n's children.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if v = v.Visit(n, VisitEnter); v == nil {
		return
	}
	n.Walk(v)
	v.Visit(n, VisitExit)
}
