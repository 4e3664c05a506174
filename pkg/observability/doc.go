/*
Package observability exposes Prometheus metrics for the Responsio client.

All recording methods are safe to call on a nil *Metrics, so components can take
metrics as an optional dependency without nil checks at every call site.
*/
package observability
