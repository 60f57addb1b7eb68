// Package httpserver provides the HTTP API of the paper vault service.
//
// The server exposes the paper lifecycle (seal, share submission, quorum,
// redeem), digest anchoring with its operator reset, integrity verification,
// and the usual operational endpoints: liveness, readiness, drain/undrain,
// optional pprof, and a separate metrics listener.
package httpserver
