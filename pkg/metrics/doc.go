// Package metrics defines and registers the Prometheus metrics exposed by
// kvsd: command counters, the live key-count gauge, snapshot counters and
// in-flight gauge, and job duration. Handler returns the promhttp handler
// for mounting at /metrics; HealthHandler, ReadyHandler, and
// LivenessHandler expose a small JSON health surface alongside it.
//
// No handler here reads or changes the KVS itself — it is observability
// tooling for whoever operates kvsd, not a remote API onto the store.
package metrics
