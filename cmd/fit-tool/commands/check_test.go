package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitkit/fit-go/pkg/fit"
)

func TestRunCheckValidFile(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	res, err := env.RunCheck(writeTestFile(t), &out)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, uint8(14), res.Header.Size)
	assert.Contains(t, out.String(), "FIT:       yes")
	assert.Contains(t, out.String(), "Integrity: ok")
	assert.Contains(t, out.String(), "protocol 2.0")
}

func TestRunCheckCorruptFile(t *testing.T) {
	data, err := os.ReadFile(writeTestFile(t))
	require.NoError(t, err)
	data[len(data)-3] ^= 0xFF

	env := newTestEnv(t)
	var out bytes.Buffer
	res, err := env.RunCheck(writeBytes(t, "corrupt.fit", data), &out)
	require.NoError(t, err)
	assert.True(t, res.IsFIT)
	assert.False(t, res.OK())
	assert.Contains(t, out.String(), "Integrity: FAILED")
}

func TestRunCheckNotFIT(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer
	res, err := env.RunCheck(writeBytes(t, "notes.txt", []byte("hello, this is not a fit file")), &out)
	require.NoError(t, err)
	assert.False(t, res.IsFIT)
	assert.Contains(t, out.String(), "FIT:       no")
	assert.NotContains(t, out.String(), "Integrity")
}

func TestRunCheckMissingFile(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.RunCheck("/nonexistent/activity.fit", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFormatHeader(t *testing.T) {
	h := fit.Header{Size: 14, ProtocolVersion: 0x20, ProfileVersion: 21158, DataSize: 100, CRC: 0xBEEF}
	assert.Equal(t, "14 bytes, protocol 2.0, profile 21.158, data 100 bytes, header CRC 0xBEEF", formatHeader(h))

	h = fit.Header{Size: 12, ProtocolVersion: 0x10, ProfileVersion: 2096, DataSize: 8}
	assert.Equal(t, "12 bytes, protocol 1.0, profile 20.96, data 8 bytes", formatHeader(h))
}
