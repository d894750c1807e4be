// Package version provides FIT protocol and profile version parsing,
// comparison and header encoding.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the protocol version implemented by this library.
const Current = "2.0"

// Protocol represents a parsed "major.minor" FIT protocol version. A header
// stores it in one byte with the major version in the high nibble.
type Protocol struct {
	Major uint8
	Minor uint8
}

// CurrentProtocol returns Current as a Protocol.
func CurrentProtocol() Protocol {
	v, _ := Parse(Current)
	return v
}

// Parse parses a "major.minor" version string. Both parts must fit in a
// nibble.
func Parse(s string) (Protocol, error) {
	major, minor, err := splitVersion(s, 15)
	if err != nil {
		return Protocol{}, err
	}
	return Protocol{Major: uint8(major), Minor: uint8(minor)}, nil
}

// FromByte decodes the protocol version byte of a header.
func FromByte(b byte) Protocol {
	return Protocol{Major: b >> 4, Minor: b & 0x0F}
}

// Byte encodes the version as written in a header.
func (v Protocol) Byte() byte {
	return v.Major<<4 | v.Minor&0x0F
}

// String returns the version as "major.minor".
func (v Protocol) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Supports reports whether a reader implementing v can decode data written
// with other. Minor versions only add features, so any version up to the
// reader's major version is readable.
func (v Protocol) Supports(other Protocol) bool {
	return other.Major <= v.Major
}

// Profile is a FIT profile version such as 21.158.
type Profile struct {
	Major uint16
	Minor uint16
}

// ParseProfile parses a "major.minor" profile version.
func ParseProfile(s string) (Profile, error) {
	major, minor, err := splitVersion(s, 0xFFFF)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Major: uint16(major), Minor: uint16(minor)}, nil
}

// ProfileFromNumber decodes the profile version of a header. Numbers from
// 21000 up carry three minor digits, older ones two.
func ProfileFromNumber(n uint16) Profile {
	if n >= 21000 {
		return Profile{Major: n / 1000, Minor: n % 1000}
	}
	return Profile{Major: n / 100, Minor: n % 100}
}

// Number encodes the version as written in a header: 21.158 becomes 21158
// and 20.96 becomes 2096.
func (p Profile) Number() (uint16, error) {
	mult := uint64(100)
	if p.Minor >= 100 {
		mult = 1000
	}
	n := uint64(p.Major)*mult + uint64(p.Minor)
	if n > 0xFFFF {
		return 0, fmt.Errorf("profile version %s out of range", p)
	}
	return uint16(n), nil
}

// String returns the version as "major.minor".
func (p Profile) String() string {
	if p.Minor >= 100 {
		return fmt.Sprintf("%d.%03d", p.Major, p.Minor)
	}
	return fmt.Sprintf("%d.%02d", p.Major, p.Minor)
}

func splitVersion(s string, max uint64) (uint64, uint64, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" || major > max {
		return 0, 0, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" || minor > max {
		return 0, 0, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return major, minor, nil
}
