// Package probe validates the declared external topology: it runs bounded,
// concurrent handshakes against the database and cache endpoints and reports
// a per-dependency outcome. Probes never retry internally; retry policy
// belongs to the caller.
package probe
