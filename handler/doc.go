// Package handler contains the concrete workflow handlers: language
// identification, issue classification and image review. Each is an
// independent implementation of core.Handler selected by registry lookup.
// Handlers absorb external-service failures and convert them into a
// terminating, user-visible message so every run completes with an assistant
// response.
package handler
