package fit

import (
	"fmt"
	"strings"
	"time"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/stream"
)

// MaxLocalMesgNum is the highest local message number.
const MaxLocalMesgNum = 15

// FieldNumTimestamp is the field number of the timestamp field shared by
// most messages.
const FieldNumTimestamp uint8 = 253

// Epoch is time zero of FIT timestamps.
var Epoch = time.Date(1989, time.December, 31, 0, 0, 0, 0, time.UTC)

// TimeFromFIT converts a FIT timestamp to a UTC time.
func TimeFromFIT(ts uint32) time.Time {
	return Epoch.Add(time.Duration(ts) * time.Second)
}

// Mesg is one message instance. Fields keep insertion order, which for
// decoded messages is wire order.
type Mesg struct {
	Name string
	Num  uint16

	localNum    uint8
	hasLocalNum bool
	index       int

	fields     map[uint8]*Field
	fieldOrder []uint8

	devFields     map[DeveloperDataKey]*DeveloperField
	devFieldOrder []DeveloperDataKey

	factory Factory
}

// NewMesg creates an empty message. Fields created through SetFieldValue
// come from DefaultFactory.
func NewMesg(name string, num uint16) *Mesg {
	return &Mesg{
		Name:      name,
		Num:       num,
		fields:    make(map[uint8]*Field),
		devFields: make(map[DeveloperDataKey]*DeveloperField),
	}
}

// LocalNum returns the local message number and whether one is set.
func (m *Mesg) LocalNum() (uint8, bool) {
	return m.localNum, m.hasLocalNum
}

// SetLocalNum pins the message to a local message number.
func (m *Mesg) SetLocalNum(n uint8) error {
	if n > MaxLocalMesgNum {
		return fmt.Errorf("%w: %d", ErrInvalidLocalMesgNum, n)
	}
	m.localNum, m.hasLocalNum = n, true
	return nil
}

// ClearLocalNum lets the encoder choose the local message number.
func (m *Mesg) ClearLocalNum() {
	m.localNum, m.hasLocalNum = 0, false
}

// Index returns the position of the message among the data messages of
// its decode session.
func (m *Mesg) Index() int { return m.index }

// NumFields returns the number of fields.
func (m *Mesg) NumFields() int { return len(m.fieldOrder) }

// Fields returns the fields in insertion order.
func (m *Mesg) Fields() []*Field {
	out := make([]*Field, 0, len(m.fieldOrder))
	for _, num := range m.fieldOrder {
		out = append(out, m.fields[num])
	}
	return out
}

// Field returns the field with the given number, or nil.
func (m *Mesg) Field(num uint8) *Field {
	return m.fields[num]
}

// HasField reports whether the message holds field num.
func (m *Mesg) HasField(num uint8) bool {
	_, ok := m.fields[num]
	return ok
}

// fieldNamed matches profile field names only, never sub-field names.
func (m *Mesg) fieldNamed(name string) *Field {
	for _, num := range m.fieldOrder {
		if f := m.fields[num]; f.Name == name {
			return f
		}
	}
	return nil
}

// FieldByName returns the field with the given name, or the field whose
// active sub-field has that name.
func (m *Mesg) FieldByName(name string) *Field {
	if f := m.fieldNamed(name); f != nil {
		return f
	}
	for _, num := range m.fieldOrder {
		f := m.fields[num]
		if sf := f.ActiveSubField(m); sf != nil && sf.Name == name {
			return f
		}
	}
	return nil
}

// SetField adds f, replacing any field with the same number in place.
func (m *Mesg) SetField(f *Field) {
	if _, ok := m.fields[f.Num]; !ok {
		m.fieldOrder = append(m.fieldOrder, f.Num)
	}
	m.fields[f.Num] = f
}

// RemoveField deletes field num and reports whether it existed.
func (m *Mesg) RemoveField(num uint8) bool {
	if _, ok := m.fields[num]; !ok {
		return false
	}
	delete(m.fields, num)
	for i, n := range m.fieldOrder {
		if n == num {
			m.fieldOrder = append(m.fieldOrder[:i], m.fieldOrder[i+1:]...)
			break
		}
	}
	return true
}

// FieldValue returns the first value of field num interpreted through its
// active sub-field, or nil.
func (m *Mesg) FieldValue(num uint8) any {
	return m.FieldValueAt(num, 0)
}

// FieldValueAt returns value i of field num; see FieldValue.
func (m *Mesg) FieldValueAt(num uint8, i int) any {
	f := m.fields[num]
	if f == nil {
		return nil
	}
	return f.ValueFor(i, f.ActiveSubField(m))
}

// FieldValueByName returns the first value of the named field or active
// sub-field. A sub-field that is not active yields nil.
func (m *Mesg) FieldValueByName(name string) any {
	if f := m.fieldNamed(name); f != nil {
		return f.ValueFor(0, f.ActiveSubField(m))
	}
	for _, num := range m.fieldOrder {
		f := m.fields[num]
		if sf := f.ActiveSubField(m); sf != nil && sf.Name == name {
			return f.ValueFor(0, sf)
		}
	}
	return nil
}

// SetFieldValue sets the first value of field num, creating the field from
// the message's factory when absent.
func (m *Mesg) SetFieldValue(num uint8, value any) error {
	return m.SetFieldValueAt(num, 0, value)
}

// SetFieldValueAt sets value i of field num; see SetFieldValue.
func (m *Mesg) SetFieldValueAt(num uint8, i int, value any) error {
	f := m.fields[num]
	if f == nil {
		f = m.newField(num)
		if err := f.SetValueFor(i, value, f.ActiveSubField(m)); err != nil {
			return err
		}
		m.SetField(f)
		return nil
	}
	return f.SetValueFor(i, value, f.ActiveSubField(m))
}

func (m *Mesg) newField(num uint8) *Field {
	factory := m.factory
	if factory == nil {
		factory = DefaultFactory()
	}
	f, _ := factory.CreateField(m.Num, num)
	return f
}

// Timestamp returns the message's timestamp field as a time.
func (m *Mesg) Timestamp() (time.Time, bool) {
	f := m.fields[FieldNumTimestamp]
	if f == nil {
		return time.Time{}, false
	}
	raw := f.RawValue(0)
	if !f.Type.IsValid(raw) {
		return time.Time{}, false
	}
	bits, ok := basetype.Bits(raw)
	if !ok {
		return time.Time{}, false
	}
	return TimeFromFIT(uint32(bits)), true
}

// DeveloperFields returns the developer fields in insertion order.
func (m *Mesg) DeveloperFields() []*DeveloperField {
	out := make([]*DeveloperField, 0, len(m.devFieldOrder))
	for _, k := range m.devFieldOrder {
		out = append(out, m.devFields[k])
	}
	return out
}

// DeveloperField returns the developer field with the given key, or nil.
func (m *Mesg) DeveloperField(key DeveloperDataKey) *DeveloperField {
	return m.devFields[key]
}

// SetDeveloperField adds df, replacing any developer field with the same key.
func (m *Mesg) SetDeveloperField(df *DeveloperField) {
	key := df.Key()
	if _, ok := m.devFields[key]; !ok {
		m.devFieldOrder = append(m.devFieldOrder, key)
	}
	m.devFields[key] = df
}

// RemoveDeveloperField deletes a developer field and reports whether it
// existed.
func (m *Mesg) RemoveDeveloperField(key DeveloperDataKey) bool {
	if _, ok := m.devFields[key]; !ok {
		return false
	}
	delete(m.devFields, key)
	for i, k := range m.devFieldOrder {
		if k == key {
			m.devFieldOrder = append(m.devFieldOrder[:i], m.devFieldOrder[i+1:]...)
			break
		}
	}
	return true
}

// expansion is a pending component expansion of the values [from, to) of a
// field.
type expansion struct {
	field    *Field
	from, to int
}

// ExpandComponents unpacks the components of every field into their
// destination fields. Destinations are created on demand and marked as
// expanded; a destination read from the wire is left untouched. Destinations
// that have components of their own are queued, so component chains expand
// in a fixed order without recursion. Accumulated components run through
// acc, which may be nil to skip accumulation.
func (m *Mesg) ExpandComponents(acc *Accumulator) {
	var work []expansion
	for _, num := range m.fieldOrder {
		f := m.fields[num]
		if hasComponents(f) {
			work = append(work, expansion{field: f, from: 0, to: f.NumValues()})
		}
	}

	for len(work) > 0 {
		e := work[0]
		work = work[1:]

		comps := e.field.Components
		if sf := e.field.ActiveSubField(m); sf != nil {
			comps = sf.Components
		}
		if len(comps) == 0 {
			continue
		}

		bits, ok := e.field.bitsOf(e.from, e.to)
		if !ok {
			continue
		}
		bs := stream.NewBitStreamFromValues(bits, e.field.Type.Size())

		consumed := 0
		for _, c := range comps {
			if c.BitOffset > consumed {
				if !skipBits(bs, c.BitOffset-consumed) {
					break
				}
				consumed = c.BitOffset
			}
			if bs.BitsAvailable() < int(c.Bits) {
				break
			}
			raw, err := bs.ReadBits(int(c.Bits))
			if err != nil {
				break
			}
			consumed += int(c.Bits)

			dest := m.fields[c.FieldNum]
			if dest != nil && !dest.expanded {
				continue
			}
			if dest == nil {
				dest = m.newField(c.FieldNum)
				dest.expanded = true
				m.SetField(dest)
			}
			if c.Accumulate && acc != nil {
				raw = acc.Accumulate(m.Num, c.FieldNum, raw, c.Bits)
			}

			before := dest.NumValues()
			if err := storeComponent(dest, c, raw); err != nil {
				continue
			}
			if hasComponents(dest) {
				work = append(work, expansion{field: dest, from: before, to: dest.NumValues()})
			}
		}
	}

	// Drop destinations that ended up with nothing usable.
	for _, f := range m.Fields() {
		if f.expanded && !f.hasValidValue() {
			m.RemoveField(f.Num)
		}
	}
}

func hasComponents(f *Field) bool {
	if len(f.Components) > 0 {
		return true
	}
	for i := range f.SubFields {
		if len(f.SubFields[i].Components) > 0 {
			return true
		}
	}
	return false
}

// bitsOf returns the bit patterns of values [from, to), or false when none
// of them is valid.
func (f *Field) bitsOf(from, to int) ([]uint64, bool) {
	if f.Type.IsString() || from >= to {
		return nil, false
	}
	out := make([]uint64, 0, to-from)
	valid := false
	for i := from; i < to && i < len(f.values); i++ {
		raw := f.values[i]
		if f.Type.IsValid(raw) {
			valid = true
		}
		b, _ := basetype.Bits(raw)
		out = append(out, b)
	}
	return out, valid
}

func skipBits(bs *stream.BitStream, n int) bool {
	for n > 0 {
		step := min(n, stream.MaxBits)
		if _, err := bs.ReadBits(step); err != nil {
			return false
		}
		n -= step
	}
	return true
}

// storeComponent appends a component value to dest. When the component and
// destination share scale and offset the raw bits are copied unchanged.
func storeComponent(dest *Field, c Component, raw uint64) error {
	scale, offset := dest.scaling(nil)
	cscale := c.Scale
	if cscale == 0 {
		cscale = 1
	}
	if dest.Type.IsInteger() && cscale == scale && c.Offset == offset {
		return dest.AddRawValue(raw)
	}
	return dest.AddValue(c.value(raw))
}

// RemoveExpandedFields deletes every field produced by component expansion.
func (m *Mesg) RemoveExpandedFields() {
	for _, f := range m.Fields() {
		if f.expanded {
			m.RemoveField(f.Num)
		}
	}
}

// Clone returns a deep copy of the message.
func (m *Mesg) Clone() *Mesg {
	c := &Mesg{
		Name:          m.Name,
		Num:           m.Num,
		localNum:      m.localNum,
		hasLocalNum:   m.hasLocalNum,
		index:         m.index,
		fields:        make(map[uint8]*Field, len(m.fields)),
		fieldOrder:    append([]uint8(nil), m.fieldOrder...),
		devFields:     make(map[DeveloperDataKey]*DeveloperField, len(m.devFields)),
		devFieldOrder: append([]DeveloperDataKey(nil), m.devFieldOrder...),
		factory:       m.factory,
	}
	for num, f := range m.fields {
		c.fields[num] = f.Clone()
	}
	for k, df := range m.devFields {
		c.devFields[k] = df.Clone()
	}
	return c
}

// Equal compares two messages by value. The decode index and field order
// are ignored.
func (m *Mesg) Equal(o *Mesg) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Name != o.Name || m.Num != o.Num ||
		m.hasLocalNum != o.hasLocalNum || m.localNum != o.localNum {
		return false
	}
	if len(m.fields) != len(o.fields) || len(m.devFields) != len(o.devFields) {
		return false
	}
	for num, f := range m.fields {
		if !f.Equal(o.fields[num]) {
			return false
		}
	}
	for k, df := range m.devFields {
		if !df.Equal(o.devFields[k]) {
			return false
		}
	}
	return true
}

// String formats the message on one line.
func (m *Mesg) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(%d)", m.Name, m.Num)
	for _, f := range m.Fields() {
		sf := f.ActiveSubField(m)
		sb.WriteByte(' ')
		sb.WriteString(formatField(f.NameFor(sf), valuesFor(f, sf), f.UnitsFor(sf)))
	}
	for _, df := range m.DeveloperFields() {
		sb.WriteByte(' ')
		sb.WriteString(df.String())
	}
	return sb.String()
}

func valuesFor(f *Field, sf *SubField) []any {
	out := make([]any, f.NumValues())
	for i := range out {
		out[i] = f.ValueFor(i, sf)
	}
	return out
}
