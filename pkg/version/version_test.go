package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		input string
		major uint8
		minor uint8
	}{
		{"1.0", 1, 0},
		{"2.0", 2, 0},
		{"2.3", 2, 3},
		{"15.15", 15, 15},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, Protocol{Major: tt.major, Minor: tt.minor}, v)
			assert.Equal(t, tt.input, v.String())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "1", "abc", "1.0.0", "1.x", "-1.0", "16.0", "2.16"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestProtocolByte(t *testing.T) {
	assert.Equal(t, byte(0x20), CurrentProtocol().Byte())
	assert.Equal(t, byte(0x10), Protocol{Major: 1}.Byte())
	assert.Equal(t, Protocol{Major: 2, Minor: 1}, FromByte(0x21))
	assert.Equal(t, Protocol{Major: 1}, FromByte(0x10))
}

func TestProtocolSupports(t *testing.T) {
	current := CurrentProtocol()
	assert.True(t, current.Supports(Protocol{Major: 1}))
	assert.True(t, current.Supports(Protocol{Major: 2, Minor: 9}))
	assert.False(t, current.Supports(Protocol{Major: 3}))
	assert.False(t, Protocol{Major: 1}.Supports(current))
}

func TestProfileNumber(t *testing.T) {
	tests := []struct {
		version string
		number  uint16
	}{
		{"21.158", 21158},
		{"20.96", 2096},
		{"2.00", 200},
		{"21.100", 21100},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			p, err := ParseProfile(tt.version)
			require.NoError(t, err)
			n, err := p.Number()
			require.NoError(t, err)
			assert.Equal(t, tt.number, n)
			assert.Equal(t, p, ProfileFromNumber(n))
			assert.Equal(t, tt.version, p.String())
		})
	}
}

func TestProfileErrors(t *testing.T) {
	_, err := ParseProfile("21")
	assert.Error(t, err)
	_, err = ParseProfile("x.1")
	assert.Error(t, err)

	p, err := ParseProfile("99.999")
	require.NoError(t, err)
	_, err = p.Number()
	assert.Error(t, err)
}
