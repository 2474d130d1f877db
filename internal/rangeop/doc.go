// Package rangeop implements the interval algebra behind RANGE rewriting:
// a total-order comparator over sub-range endpoints, the merge operation
// that coalesces overlapping or touching sub-ranges of one RANGE node,
// the intersection of two RANGE nodes from distinct CNF conjuncts, and
// the membership test used by the property tests.
//
// Endpoints are three-state (bounded, unbounded, NULL-bounded). An
// unbounded endpoint means +-infinity; a NULL-bounded endpoint makes its
// sub-range unsatisfiable and is rejected by the comparator rather than
// ordered. Integer endpoints are normalized to closed form (an open
// lower bound at v is the closed bound at v+1) so that touching integer
// sub-ranges are recognized as adjacent and merged.
package rangeop
