// Package ticket defines the support ticket record and its storage backends.
// The Store interface lives alongside its implementations because nothing
// above the wiring layer needs to name a concrete backend; the facade accepts
// any Store.
package ticket
