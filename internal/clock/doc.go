// Package clock supplies the timestamp source used to stamp account creation.
//
// System returns wall-clock UTC time; Manual is a settable, non-decreasing
// clock for tests and deterministic replays.
package clock
