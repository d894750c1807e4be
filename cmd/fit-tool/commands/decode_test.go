package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitkit/fit-go/pkg/fit"
)

func TestRunDecode(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	err := env.RunDecode(writeTestFile(t), DecodeOptions{Mode: fit.DecodeModeNormal, Expand: true}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1+6+1, "header, six messages and one developer field description")
	assert.True(t, strings.HasPrefix(lines[0], "header 14 bytes"))
	assert.True(t, strings.HasPrefix(lines[1], "[0] file_id(0)"))
	assert.Equal(t, "devfield 0:0 laps_left (uint8) app ab", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "[2] field_description(206)"))
	assert.Contains(t, lines[5], "heart_rate=120 bpm")
	assert.Contains(t, lines[5], "laps_left=7")
	assert.NotContains(t, out.String(), "def local=")
}

func TestRunDecodeWithDefinitions(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	err := env.RunDecode(writeTestFile(t), DecodeOptions{Mode: fit.DecodeModeNormal, Definitions: true}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "def local=0 mesg=0 little")
	assert.Equal(t, 5, strings.Count(out.String(), "def local="),
		"records with and without the developer field differ in layout")
}

func TestRunDecodeSkipHeaderOmitsHeaderLine(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	require.NoError(t, env.RunDecode(writeTestFile(t), DecodeOptions{Mode: fit.DecodeModeSkipHeader}, &out))
	assert.NotContains(t, out.String(), "header ")
	assert.Contains(t, out.String(), "[5] record(20)")
}

func TestRunDecodeFailure(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	err := env.RunDecode(writeBytes(t, "junk.fit", []byte{1, 2, 3}), DecodeOptions{Mode: fit.DecodeModeNormal}, &out)
	assert.ErrorIs(t, err, fit.ErrMalformedHeader)
}
