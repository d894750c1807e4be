// Package stream provides the cursors the FIT codec reads and writes through.
//
// ByteStream is a sequential reader/writer over an in-memory buffer with
// endian-aware numeric access. BitStream reads unsigned values of 1 to 64
// bits from a byte buffer, least significant bit first, which is how FIT
// packs components into a containing field.
package stream
