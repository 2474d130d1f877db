// Package sqlir defines the statement-level intermediate representation
// consumed by the rewrite pipeline: typed values, a sealed predicate
// expression tree, CNF clause lists with per-clause origin tags, and the
// join-spec list of a compiled statement.
//
// The IR is produced by an external binder/normalizer. WHERE and HAVING
// arrive already in conjunctive normal form: a ClauseList is an AND of
// Clauses, and each Clause is an OR of Terms. A Clause carries the
// location of its origin (0 for plain WHERE, N>0 for the Nth FROM spec's
// ON condition) so join conditions can be rewritten in the same list as
// filters and split back out afterwards.
//
// All structures are private to one statement compile. Nothing in this
// package is safe for concurrent mutation and nothing needs to be: the
// rewrite pipeline is single-threaded by contract.
package sqlir
