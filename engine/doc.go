// Package engine drives the support workflow: it seeds conversation state for
// an incoming message, invokes the active handler, guards the history shape
// around every invocation, consults the router for the next transition and
// terminates deterministically, converting the internal terminate sentinel
// into a caller-facing result.
package engine
