// Package watcher follows the registry event history.
//
// It polls the registry server on a fixed interval and prints every event
// with a sequence number above the last one seen, until canceled.
package watcher
