// Package metrics holds the Prometheus instruments of the registry service.
package metrics
