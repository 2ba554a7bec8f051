// Package core contains the shared domain types of SupportMesh: conversation
// messages and state, the handler capability interface with its immutable
// registry, routing directives and the history validation guards enforced
// around every handler invocation.
package core
