package fit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/profile"
)

func newDeveloperDataID(t *testing.T, index uint8, appID []byte) *Mesg {
	t.Helper()
	m := DefaultFactory().CreateMesg(profile.MesgNumDeveloperDataId)
	for i, b := range appID {
		require.NoError(t, m.SetFieldValueAt(profile.DeveloperDataIdApplicationId, i, b))
	}
	require.NoError(t, m.SetFieldValue(profile.DeveloperDataIdDeveloperDataIndex, index))
	require.NoError(t, m.SetFieldValue(profile.DeveloperDataIdApplicationVersion, uint32(7)))
	return m
}

func newFieldDescription(t *testing.T, index, num uint8, bt basetype.BaseType, name, units string) *Mesg {
	t.Helper()
	m := DefaultFactory().CreateMesg(profile.MesgNumFieldDescription)
	require.NoError(t, m.SetFieldValue(profile.FieldDescriptionDeveloperDataIndex, index))
	require.NoError(t, m.SetFieldValue(profile.FieldDescriptionFieldDefinitionNumber, num))
	require.NoError(t, m.SetFieldValue(profile.FieldDescriptionFitBaseTypeId, uint8(bt)))
	require.NoError(t, m.SetFieldValue(profile.FieldDescriptionFieldName, name))
	if units != "" {
		require.NoError(t, m.SetFieldValue(profile.FieldDescriptionUnits, units))
	}
	return m
}

func newFileID(t *testing.T) *Mesg {
	t.Helper()
	m := DefaultFactory().CreateMesg(profile.MesgNumFileId)
	require.NoError(t, m.SetFieldValue(profile.FileIdType, uint8(4)))
	require.NoError(t, m.SetFieldValue(profile.FileIdManufacturer, profile.ManufacturerGarmin))
	require.NoError(t, m.SetFieldValue(profile.FileIdProduct, uint16(3121)))
	require.NoError(t, m.SetFieldValue(profile.FileIdSerialNumber, uint32(1234567)))
	require.NoError(t, m.SetFieldValue(profile.FileIdTimeCreated, uint32(1_000_000_000)))
	return m
}

// encodeFile encodes mesgs with cfg and returns the file.
func encodeFile(t *testing.T, cfg EncoderConfig, mesgs ...*Mesg) []byte {
	t.Helper()
	enc, err := NewEncoderWithConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, enc.Write(mesgs))
	data, err := enc.Close()
	require.NoError(t, err)
	return data
}

// decodeFile decodes data in mode and collects everything broadcast.
func decodeFile(t *testing.T, data []byte, mode DecodeMode) *MesgCollector {
	t.Helper()
	c := &MesgCollector{}
	dec := NewDecoder(data)
	dec.AddMesgListener(c)
	dec.AddMesgDefinitionListener(c)
	dec.AddDeveloperFieldDescriptionListener(c)
	require.NoError(t, dec.Read(mode))
	return c
}
