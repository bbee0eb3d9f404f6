// Package algebra implements the Algebraic Overlay (C7, spec §4.7):
// vectors attached to nodes, edges, sides and elements, the symmetric
// connections (matrix half-edges) between them, free-list allocation,
// class propagation, and the streamline reordering of §4.7.1. It sits
// above package mesh the way gonum's mat package sits above raw
// float64 storage -- mesh entities carry only an untyped back-pointer
// slot (Node.Vec, Edge.Vec, ElementSide.Vec, Element.Vec); algebra
// owns the typed *Vector on the other end.
package algebra
