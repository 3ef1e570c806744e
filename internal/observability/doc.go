// Package observability provides structured logging and Prometheus metrics
// for the gateway.
//
// Loggers are zap-based and carried through request contexts so handlers
// and services log with the request ID attached. Metrics are kept in a
// dedicated Prometheus registry exposed on /metrics.
package observability
