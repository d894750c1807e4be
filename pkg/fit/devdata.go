package fit

import (
	"fmt"
	"slices"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/profile"
)

// DeveloperDataKey identifies a developer field within a session. The
// order of the pair matters: (1, 2) and (2, 1) are different fields.
type DeveloperDataKey struct {
	DeveloperDataIndex    uint8
	FieldDefinitionNumber uint8
}

func (k DeveloperDataKey) String() string {
	return fmt.Sprintf("%d:%d", k.DeveloperDataIndex, k.FieldDefinitionNumber)
}

// DeveloperFieldDefinition joins a field_description message with the
// developer_data_id message it belongs to.
type DeveloperFieldDefinition struct {
	description     *Mesg
	developerDataID *Mesg
	size            uint8
}

// NewDeveloperFieldDefinition creates a definition for a developer field
// occupying size bytes on the wire. developerDataID may be nil.
func NewDeveloperFieldDefinition(description, developerDataID *Mesg, size uint8) *DeveloperFieldDefinition {
	return &DeveloperFieldDefinition{
		description:     description,
		developerDataID: developerDataID,
		size:            size,
	}
}

// FieldDescriptionMesg returns the field_description message.
func (d *DeveloperFieldDefinition) FieldDescriptionMesg() *Mesg { return d.description }

// DeveloperDataIDMesg returns the developer_data_id message.
func (d *DeveloperFieldDefinition) DeveloperDataIDMesg() *Mesg { return d.developerDataID }

// Size returns the wire size.
func (d *DeveloperFieldDefinition) Size() uint8 { return d.size }

// Key returns the developer data index and field definition number.
func (d *DeveloperFieldDefinition) Key() DeveloperDataKey {
	return DeveloperDataKey{
		DeveloperDataIndex:    d.DeveloperDataIndex(),
		FieldDefinitionNumber: d.FieldDefinitionNumber(),
	}
}

func (d *DeveloperFieldDefinition) DeveloperDataIndex() uint8 {
	v, _ := mesgUint(d.description, profile.FieldDescriptionDeveloperDataIndex)
	return uint8(v)
}

func (d *DeveloperFieldDefinition) FieldDefinitionNumber() uint8 {
	v, _ := mesgUint(d.description, profile.FieldDescriptionFieldDefinitionNumber)
	return uint8(v)
}

// BaseType returns the described base type, BYTE if it is missing or unknown.
func (d *DeveloperFieldDefinition) BaseType() basetype.BaseType {
	v, ok := mesgUint(d.description, profile.FieldDescriptionFitBaseTypeId)
	if bt := basetype.BaseType(v); ok && bt.Known() {
		return bt
	}
	return basetype.Byte
}

func (d *DeveloperFieldDefinition) Name() string {
	return mesgString(d.description, profile.FieldDescriptionFieldName)
}

func (d *DeveloperFieldDefinition) Units() string {
	return mesgString(d.description, profile.FieldDescriptionUnits)
}

// Scale returns the described scale, 1 when absent.
func (d *DeveloperFieldDefinition) Scale() float64 {
	if v, ok := mesgUint(d.description, profile.FieldDescriptionScale); ok && v != 0 {
		return float64(v)
	}
	return 1
}

// Offset returns the described offset, 0 when absent.
func (d *DeveloperFieldDefinition) Offset() float64 {
	f := d.description.Field(profile.FieldDescriptionOffset)
	if f == nil || !f.Type.IsValid(f.RawValue(0)) {
		return 0
	}
	x, _ := basetype.ToFloat64(f.RawValue(0))
	return x
}

// NativeMesgNum returns the profile message this field mirrors, if any.
func (d *DeveloperFieldDefinition) NativeMesgNum() (uint16, bool) {
	v, ok := mesgUint(d.description, profile.FieldDescriptionNativeMesgNum)
	return uint16(v), ok
}

// NativeFieldNum returns the profile field this field mirrors, if any.
func (d *DeveloperFieldDefinition) NativeFieldNum() (uint8, bool) {
	v, ok := mesgUint(d.description, profile.FieldDescriptionNativeFieldNum)
	return uint8(v), ok
}

// ApplicationID returns the application ID bytes of the developer.
func (d *DeveloperFieldDefinition) ApplicationID() []byte {
	if d.developerDataID == nil {
		return nil
	}
	f := d.developerDataID.Field(profile.DeveloperDataIdApplicationId)
	if f == nil {
		return nil
	}
	out := make([]byte, 0, f.NumValues())
	for _, v := range f.RawValues() {
		if b, ok := v.(uint8); ok {
			out = append(out, b)
		}
	}
	return out
}

// ApplicationVersion returns the developer's application version.
func (d *DeveloperFieldDefinition) ApplicationVersion() (uint32, bool) {
	if d.developerDataID == nil {
		return 0, false
	}
	v, ok := mesgUint(d.developerDataID, profile.DeveloperDataIdApplicationVersion)
	return uint32(v), ok
}

// mesgUint returns the first value of an unsigned field, if valid.
func mesgUint(m *Mesg, num uint8) (uint64, bool) {
	if m == nil {
		return 0, false
	}
	f := m.Field(num)
	if f == nil || f.NumValues() == 0 {
		return 0, false
	}
	raw := f.RawValue(0)
	if !f.Type.IsValid(raw) {
		return 0, false
	}
	v, ok := rawInt64(raw)
	if !ok || v < 0 {
		return 0, false
	}
	return uint64(v), true
}

// mesgString returns the first value of a string field, or "".
func mesgString(m *Mesg, num uint8) string {
	if m == nil {
		return ""
	}
	f := m.Field(num)
	if f == nil {
		return ""
	}
	s, _ := f.RawValue(0).(string)
	return s
}

// DeveloperFieldDescription is broadcast once both the developer_data_id
// and the field_description of a developer field are known.
type DeveloperFieldDescription struct {
	DeveloperDataIndex    uint8
	FieldDefinitionNumber uint8
	FieldName             string
	Units                 string
	BaseType              basetype.BaseType
	Scale                 float64
	Offset                float64
	ApplicationID         []byte
	ApplicationVersion    uint32
}

// NewDeveloperFieldDescription summarizes a developer field definition.
func NewDeveloperFieldDescription(def *DeveloperFieldDefinition) *DeveloperFieldDescription {
	version, _ := def.ApplicationVersion()
	return &DeveloperFieldDescription{
		DeveloperDataIndex:    def.DeveloperDataIndex(),
		FieldDefinitionNumber: def.FieldDefinitionNumber(),
		FieldName:             def.Name(),
		Units:                 def.Units(),
		BaseType:              def.BaseType(),
		Scale:                 def.Scale(),
		Offset:                def.Offset(),
		ApplicationID:         def.ApplicationID(),
		ApplicationVersion:    version,
	}
}

// Key returns the developer data key of the description.
func (d *DeveloperFieldDescription) Key() DeveloperDataKey {
	return DeveloperDataKey{d.DeveloperDataIndex, d.FieldDefinitionNumber}
}

// DeveloperDataLookup resolves developer fields within one decode session.
type DeveloperDataLookup struct {
	developerDataIDs  map[uint8]*Mesg
	fieldDescriptions map[DeveloperDataKey]*Mesg
}

// NewDeveloperDataLookup creates an empty lookup.
func NewDeveloperDataLookup() *DeveloperDataLookup {
	return &DeveloperDataLookup{
		developerDataIDs:  make(map[uint8]*Mesg),
		fieldDescriptions: make(map[DeveloperDataKey]*Mesg),
	}
}

// AddDeveloperDataIDMesg registers a developer_data_id message. Replacing
// an index that is already registered discards the field descriptions
// registered under it; descriptions that arrived before the first
// developer_data_id for their index are kept.
func (l *DeveloperDataLookup) AddDeveloperDataIDMesg(m *Mesg) error {
	index, ok := mesgUint(m, profile.DeveloperDataIdDeveloperDataIndex)
	if !ok {
		return fmt.Errorf("%w: developer_data_id has no developer_data_index", ErrInvalidDeveloperIndex)
	}
	idx := uint8(index)
	if _, exists := l.developerDataIDs[idx]; exists {
		for k := range l.fieldDescriptions {
			if k.DeveloperDataIndex == idx {
				delete(l.fieldDescriptions, k)
			}
		}
	}
	l.developerDataIDs[idx] = m
	return nil
}

// AddFieldDescriptionMesg registers a field_description message, replacing
// any description with the same key. When the matching developer_data_id
// is known the resulting description is returned; otherwise nil.
func (l *DeveloperDataLookup) AddFieldDescriptionMesg(m *Mesg) (*DeveloperFieldDescription, error) {
	index, ok := mesgUint(m, profile.FieldDescriptionDeveloperDataIndex)
	if !ok {
		return nil, fmt.Errorf("%w: field_description has no developer_data_index", ErrInvalidDeveloperIndex)
	}
	num, ok := mesgUint(m, profile.FieldDescriptionFieldDefinitionNumber)
	if !ok {
		return nil, fmt.Errorf("%w: field_description has no field_definition_number", ErrInvalidDeveloperIndex)
	}
	key := DeveloperDataKey{uint8(index), uint8(num)}
	l.fieldDescriptions[key] = m

	devID, ok := l.developerDataIDs[key.DeveloperDataIndex]
	if !ok {
		return nil, nil
	}
	return NewDeveloperFieldDescription(NewDeveloperFieldDefinition(m, devID, 0)), nil
}

// DeveloperFieldDefinition returns the definition of a developer field with
// the given wire size, or nil when either half was never registered.
func (l *DeveloperDataLookup) DeveloperFieldDefinition(key DeveloperDataKey, size uint8) *DeveloperFieldDefinition {
	devID, ok := l.developerDataIDs[key.DeveloperDataIndex]
	if !ok {
		return nil
	}
	desc, ok := l.fieldDescriptions[key]
	if !ok {
		return nil
	}
	return NewDeveloperFieldDefinition(desc, devID, size)
}

// Descriptions returns every resolvable developer field, ordered by key.
func (l *DeveloperDataLookup) Descriptions() []*DeveloperFieldDescription {
	keys := make([]DeveloperDataKey, 0, len(l.fieldDescriptions))
	for k := range l.fieldDescriptions {
		if _, ok := l.developerDataIDs[k.DeveloperDataIndex]; ok {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b DeveloperDataKey) int {
		if a.DeveloperDataIndex != b.DeveloperDataIndex {
			return int(a.DeveloperDataIndex) - int(b.DeveloperDataIndex)
		}
		return int(a.FieldDefinitionNumber) - int(b.FieldDefinitionNumber)
	})
	out := make([]*DeveloperFieldDescription, 0, len(keys))
	for _, k := range keys {
		out = append(out, NewDeveloperFieldDescription(l.DeveloperFieldDefinition(k, 0)))
	}
	return out
}

// Reset forgets every registration.
func (l *DeveloperDataLookup) Reset() {
	clear(l.developerDataIDs)
	clear(l.fieldDescriptions)
}

// DeveloperField is a field defined at runtime by a field_description
// message. Its profile attributes come from the description.
type DeveloperField struct {
	*Field

	key DeveloperDataKey
	def *DeveloperFieldDefinition
}

// NewDeveloperField creates an empty developer field from a definition.
func NewDeveloperField(def *DeveloperFieldDefinition) *DeveloperField {
	f := NewField(def.Name(), def.FieldDefinitionNumber(), def.BaseType())
	f.Scale = def.Scale()
	f.Offset = def.Offset()
	f.Units = def.Units()
	return &DeveloperField{Field: f, key: def.Key(), def: def}
}

// newUndefinedDeveloperField holds the bytes of a developer field whose
// description never arrived.
func newUndefinedDeveloperField(key DeveloperDataKey) *DeveloperField {
	return &DeveloperField{
		Field: NewField(UnknownName, key.FieldDefinitionNumber, basetype.Byte),
		key:   key,
	}
}

// Key returns the developer data key.
func (df *DeveloperField) Key() DeveloperDataKey { return df.key }

// Definition returns the definition, or nil for an undefined field.
func (df *DeveloperField) Definition() *DeveloperFieldDefinition { return df.def }

// Clone returns a deep copy of the values; the definition is shared.
func (df *DeveloperField) Clone() *DeveloperField {
	return &DeveloperField{Field: df.Field.Clone(), key: df.key, def: df.def}
}

// Equal compares the key and the underlying field.
func (df *DeveloperField) Equal(o *DeveloperField) bool {
	if df == nil || o == nil {
		return df == o
	}
	return df.key == o.key && df.Field.Equal(o.Field)
}

func (df *DeveloperField) String() string {
	return formatField("dev["+df.key.String()+"]."+df.Name, df.Values(), df.Units)
}
