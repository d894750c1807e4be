// Package crc16 implements the 16-bit CRC used by FIT files to protect the
// file header and the complete file (header plus data records).
//
// The checksum is computed four bits at a time from a sixteen entry table,
// which is the reference algorithm published with the FIT protocol. The
// result is bit-identical to CRC-16/ARC (reflected polynomial 0x8005, zero
// initial value).
package crc16

var table = [16]uint16{
	0x0000, 0xCC01, 0xD801, 0x1400, 0xF001, 0x3C00, 0x2800, 0xE401,
	0xA001, 0x6C00, 0x7800, 0xB401, 0x5000, 0x9C01, 0x8801, 0x4400,
}

// Update folds one byte into a running CRC and returns the new value.
func Update(crc uint16, b byte) uint16 {
	// lower nibble
	tmp := table[crc&0xF]
	crc = (crc >> 4) & 0x0FFF
	crc = crc ^ tmp ^ table[b&0xF]

	// upper nibble
	tmp = table[crc&0xF]
	crc = (crc >> 4) & 0x0FFF
	crc = crc ^ tmp ^ table[(b>>4)&0xF]

	return crc
}

// UpdateBytes folds every byte of buf into a running CRC.
func UpdateBytes(crc uint16, buf []byte) uint16 {
	for _, b := range buf {
		crc = Update(crc, b)
	}
	return crc
}

// Calculate returns the CRC of buf starting from zero.
func Calculate(buf []byte) uint16 {
	return UpdateBytes(0, buf)
}
