package commands

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/fit"
	"github.com/fitkit/fit-go/pkg/profile"
)

const baseTimestamp = uint32(1_000_000_000)

// testMesgs returns file_id, developer_data_id, field_description and three
// records; the first record carries a developer field.
func testMesgs(t *testing.T) []*fit.Mesg {
	t.Helper()
	factory := fit.DefaultFactory()

	fileID := factory.CreateMesg(profile.MesgNumFileId)
	require.NoError(t, fileID.SetFieldValue(profile.FileIdType, uint8(4)))
	require.NoError(t, fileID.SetFieldValue(profile.FileIdManufacturer, profile.ManufacturerGarmin))
	require.NoError(t, fileID.SetFieldValue(profile.FileIdSerialNumber, uint32(42)))

	devID := factory.CreateMesg(profile.MesgNumDeveloperDataId)
	require.NoError(t, devID.SetFieldValueAt(profile.DeveloperDataIdApplicationId, 0, uint8(0xAB)))
	require.NoError(t, devID.SetFieldValue(profile.DeveloperDataIdDeveloperDataIndex, uint8(0)))

	desc := factory.CreateMesg(profile.MesgNumFieldDescription)
	require.NoError(t, desc.SetFieldValue(profile.FieldDescriptionDeveloperDataIndex, uint8(0)))
	require.NoError(t, desc.SetFieldValue(profile.FieldDescriptionFieldDefinitionNumber, uint8(0)))
	require.NoError(t, desc.SetFieldValue(profile.FieldDescriptionFitBaseTypeId, uint8(basetype.Uint8)))
	require.NoError(t, desc.SetFieldValue(profile.FieldDescriptionFieldName, "laps_left"))

	mesgs := []*fit.Mesg{fileID, devID, desc}
	for i := range 3 {
		r := factory.CreateMesg(profile.MesgNumRecord)
		require.NoError(t, r.SetFieldValue(fit.FieldNumTimestamp, baseTimestamp+uint32(i)))
		require.NoError(t, r.SetFieldValue(profile.RecordHeartRate, 120+i))
		if i == 0 {
			df := fit.NewDeveloperField(fit.NewDeveloperFieldDefinition(desc, devID, 1))
			require.NoError(t, df.SetValue(0, uint8(7)))
			r.SetDeveloperField(df)
		}
		mesgs = append(mesgs, r)
	}
	return mesgs
}

// writeTestFile encodes testMesgs into a file under t.TempDir.
func writeTestFile(t *testing.T) string {
	t.Helper()
	enc := fit.NewEncoder()
	require.NoError(t, enc.Write(testMesgs(t)))
	data, err := enc.Close()
	require.NoError(t, err)
	return writeBytes(t, "activity.fit", data)
}

func writeBytes(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	env, err := NewEnv(cfg, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { env.Close() })
	return env
}
