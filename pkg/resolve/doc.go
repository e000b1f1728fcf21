// Package resolve provides fire-and-forget invocation of wrapped functions.
//
// A Method wraps a function; every Go() call runs it on a fresh goroutine and
// returns a Resolve, a one-shot handle that is eventually published with the
// function's value or error. A Runtime keeps weak, non-owning bookkeeping of
// everything spawned so shutdown code can join stragglers within a budget.
package resolve
