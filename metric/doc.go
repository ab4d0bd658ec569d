// Package metric exports operator metrics to Prometheus.
package metric
