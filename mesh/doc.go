// Package mesh fixes the contracts of the grid container the
// refinement core treats as an external collaborator (spec.md §1,
// §3 "Mesh entities"): vertices, nodes, edges, elements, element
// sides, and the per-level grid plus the multigrid level list. The
// storage shape mirrors gonum's graph/simple.UndirectedGraph (flat
// int64-keyed maps, explicit ID allocation) generalized to also carry
// the doubly-linked per-level element order spec §5 requires.
package mesh
