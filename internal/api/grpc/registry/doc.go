// Package registry implements the gRPC transport for the registry service.
//
// The service descriptor is declared by hand and messages are plain Go
// structs carried by a JSON codec registered under the "json" content
// subtype. Timestamps and durations use the protobuf well-known types.
// Domain errors are mapped to gRPC status codes at this edge.
package registry
