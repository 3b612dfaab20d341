// Package api contains the HTTP handlers, request/response models and
// error mapping for the task tracker's REST surface. Handlers depend on the
// store interfaces and services, never on concrete platform types, so tests
// can exercise them with in-memory fakes.
package api
