package fit

import (
	"github.com/fitkit/fit-go/pkg/basetype"
)

// SubFieldRef is one trigger of a sub-field: the sub-field is active while
// the named field of the message holds Value.
type SubFieldRef struct {
	FieldName string
	Value     int64
}

// SubField is an alternate interpretation of a field. Raw values stay in the
// containing field's base type; the sub-field only changes how they are
// named, scaled and expanded.
type SubField struct {
	Name       string
	Type       basetype.BaseType
	Scale      float64
	Offset     float64
	Units      string
	Refs       []SubFieldRef
	Components []Component
}

// CanMesgSupport reports whether any reference field of m currently holds
// one of the trigger values.
func (sf *SubField) CanMesgSupport(m *Mesg) bool {
	if sf == nil || m == nil {
		return false
	}
	for _, ref := range sf.Refs {
		f := m.fieldNamed(ref.FieldName)
		if f == nil || f.NumValues() == 0 {
			continue
		}
		raw := f.RawValue(0)
		if !f.Type.IsValid(raw) {
			continue
		}
		if v, ok := rawInt64(raw); ok && v == ref.Value {
			return true
		}
	}
	return false
}

// rawInt64 widens an integer raw value.
func rawInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case uint8:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case int16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}
