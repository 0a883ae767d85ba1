// Package payload defines the wire schema for sysmonify resource streams.
//
// Each resource kind (cpu, memory, disk, network, gpu, processes) has its own
// message type carrying one or more optional top-level sections. A section is
// present only when the server produced new data for it on that tick; static
// detail sections additionally appear on the first message of a subscription.
//
// All types marshal to the JSON shapes the WebSocket endpoints emit, so the
// package is usable both server-side (encoding) and client-side (decoding via
// Decode). Messages are never mutated after publication; clients may retain
// them without copying.
package payload
