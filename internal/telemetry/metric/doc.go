// Package metric provides Prometheus metrics for the provisioning services.
//
// Each process owns one Registry (no global prometheus registration) that
// is served in Prometheus text format on the optional metrics listener.
package metric
