// Package profile provides the FIT global profile: the table of message and
// field numbers with their base types, scale, offset, units, sub-fields and
// components.
//
// The profile is generated data. It ships embedded as YAML and is parsed
// once on first use. Only a representative subset of the global profile is
// included; messages and fields outside the table decode as "unknown"
// shapes.
//
// # Scale and Offset
//
// Numeric fields store raw integers on the wire. The profile value is
//
//	value = raw / scale - offset
//
// and the inverse is applied when a value is set.
package profile
