// Package event defines the domain events emitted by the registries and an
// append-only Log that collects them until the enclosing transaction drains it.
package event
