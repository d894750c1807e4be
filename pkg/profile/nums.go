package profile

// Global message numbers.
const (
	MesgNumFileId           uint16 = 0
	MesgNumSport            uint16 = 12
	MesgNumSession          uint16 = 18
	MesgNumLap              uint16 = 19
	MesgNumRecord           uint16 = 20
	MesgNumEvent            uint16 = 21
	MesgNumDeviceInfo       uint16 = 23
	MesgNumActivity         uint16 = 34
	MesgNumFileCreator      uint16 = 49
	MesgNumHr               uint16 = 132
	MesgNumFieldDescription uint16 = 206
	MesgNumDeveloperDataId  uint16 = 207
	MesgNumInvalid          uint16 = 0xFFFF
)

// Field numbers shared by many messages.
const (
	FieldNumTimestamp    uint8 = 253
	FieldNumMessageIndex uint8 = 254
)

// file_id fields.
const (
	FileIdType         uint8 = 0
	FileIdManufacturer uint8 = 1
	FileIdProduct      uint8 = 2
	FileIdSerialNumber uint8 = 3
	FileIdTimeCreated  uint8 = 4
	FileIdNumber       uint8 = 5
	FileIdProductName  uint8 = 8
)

// record fields.
const (
	RecordPositionLat              uint8 = 0
	RecordPositionLong             uint8 = 1
	RecordAltitude                 uint8 = 2
	RecordHeartRate                uint8 = 3
	RecordCadence                  uint8 = 4
	RecordDistance                 uint8 = 5
	RecordSpeed                    uint8 = 6
	RecordPower                    uint8 = 7
	RecordCompressedSpeedDistance  uint8 = 8
	RecordCycles                   uint8 = 18
	RecordTotalCycles              uint8 = 19
	RecordCompressedAccumulatedPwr uint8 = 28
	RecordAccumulatedPower         uint8 = 29
	RecordEnhancedSpeed            uint8 = 73
	RecordEnhancedAltitude         uint8 = 78
)

// event fields.
const (
	EventEvent        uint8 = 0
	EventEventType    uint8 = 1
	EventData16       uint8 = 2
	EventData         uint8 = 3
	EventFrontGearNum uint8 = 9
	EventFrontGear    uint8 = 10
	EventRearGearNum  uint8 = 11
	EventRearGear     uint8 = 12
)

// hr fields.
const (
	HrEventTimestamp   uint8 = 9
	HrEventTimestamp12 uint8 = 10
)

// field_description fields.
const (
	FieldDescriptionDeveloperDataIndex    uint8 = 0
	FieldDescriptionFieldDefinitionNumber uint8 = 1
	FieldDescriptionFitBaseTypeId         uint8 = 2
	FieldDescriptionFieldName             uint8 = 3
	FieldDescriptionArray                 uint8 = 4
	FieldDescriptionComponents            uint8 = 5
	FieldDescriptionScale                 uint8 = 6
	FieldDescriptionOffset                uint8 = 7
	FieldDescriptionUnits                 uint8 = 8
	FieldDescriptionBits                  uint8 = 9
	FieldDescriptionAccumulate            uint8 = 10
	FieldDescriptionFitBaseUnitId         uint8 = 13
	FieldDescriptionNativeMesgNum         uint8 = 14
	FieldDescriptionNativeFieldNum        uint8 = 15
)

// developer_data_id fields.
const (
	DeveloperDataIdDeveloperId        uint8 = 0
	DeveloperDataIdApplicationId      uint8 = 1
	DeveloperDataIdManufacturerId     uint8 = 2
	DeveloperDataIdDeveloperDataIndex uint8 = 3
	DeveloperDataIdApplicationVersion uint8 = 4
)

// Values of the event field that select event.data sub-fields used in tests
// and tools.
const (
	EventTimer           uint8 = 0
	EventRearGearChange  uint8 = 42
	EventFrontGearChange uint8 = 43
)

// Manufacturer numbers that select file_id.product sub-fields.
const (
	ManufacturerGarmin uint16 = 1
	ManufacturerFavero uint16 = 263
)
