// Package ats implements the deterministic resume scoring engine.
//
// Resume text is normalized, matched against a role's keyword set, scored on a
// bounded non-linear curve and summarized into strength and improvement
// statements. Every function in this package is pure: no I/O, no logging and
// no shared mutable state, so concurrent analyses need no coordination.
package ats
