// Package pool
// Author: momentics <momentics@gmail.com>
//
// Free-memory pool for fixed-size segments. One lock-free FreeList per
// configured segment type, aggregated by FreePool, plus the two-phase
// reclamation protocol that hands excess segments back: ReturnToVM splices
// the retained part back onto the live list behind a quiescence barrier,
// ReturnToOS destroys the rest. Both phases are incremental and bounded by
// an absolute deadline on an api.Clock.
//
// Contract violations (indexing an unknown type, running a phase out of
// order, double destruction) panic with errors.AssertionFailedf. Build with
// -tags debug to re-verify chain counters on every splice.
package pool
