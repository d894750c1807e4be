package fit

import (
	"sync"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/profile"
)

// Factory creates messages and fields shaped by a profile.
type Factory interface {
	// CreateMesg returns an empty message. Unknown numbers produce a
	// message named UnknownName.
	CreateMesg(num uint16) *Mesg

	// CreateField returns an empty field and whether the profile knows it.
	// Unknown fields are named UnknownName and typed BYTE.
	CreateField(mesgNum uint16, fieldNum uint8) (*Field, bool)
}

// ProfileFactory is a Factory backed by a profile table. Field prototypes
// are built once; created fields share their component and sub-field
// tables.
type ProfileFactory struct {
	profile *profile.Profile
	mesgs   map[uint16]*mesgPrototype
}

type mesgPrototype struct {
	name   string
	fields map[uint8]*Field
}

// NewProfileFactory builds a factory for p.
func NewProfileFactory(p *profile.Profile) *ProfileFactory {
	f := &ProfileFactory{
		profile: p,
		mesgs:   make(map[uint16]*mesgPrototype, len(p.Messages)),
	}
	for i := range p.Messages {
		spec := &p.Messages[i]
		proto := &mesgPrototype{name: spec.Name, fields: make(map[uint8]*Field, len(spec.Fields))}
		for j := range spec.Fields {
			fs := &spec.Fields[j]
			proto.fields[fs.Num] = fieldFromSpec(fs)
		}
		f.mesgs[spec.Num] = proto
	}
	return f
}

var defaultFactory = sync.OnceValue(func() *ProfileFactory {
	return NewProfileFactory(profile.MustLoad())
})

// DefaultFactory returns the factory for the embedded profile.
func DefaultFactory() *ProfileFactory {
	return defaultFactory()
}

// Profile returns the underlying profile.
func (f *ProfileFactory) Profile() *profile.Profile { return f.profile }

// MesgName returns the profile name of a message number.
func (f *ProfileFactory) MesgName(num uint16) string {
	if p, ok := f.mesgs[num]; ok {
		return p.name
	}
	return UnknownName
}

// CreateMesg implements Factory.
func (f *ProfileFactory) CreateMesg(num uint16) *Mesg {
	m := NewMesg(f.MesgName(num), num)
	m.factory = f
	return m
}

// CreateMesgByName creates a message by profile name.
func (f *ProfileFactory) CreateMesgByName(name string) (*Mesg, bool) {
	spec, ok := f.profile.MesgByName(name)
	if !ok {
		return nil, false
	}
	return f.CreateMesg(spec.Num), true
}

// CreateField implements Factory.
func (f *ProfileFactory) CreateField(mesgNum uint16, fieldNum uint8) (*Field, bool) {
	if p, ok := f.mesgs[mesgNum]; ok {
		if proto, ok := p.fields[fieldNum]; ok {
			return proto.Clone(), true
		}
	}
	return NewField(UnknownName, fieldNum, basetype.Byte), false
}

func fieldFromSpec(fs *profile.FieldSpec) *Field {
	f := NewField(fs.Name, fs.Num, fs.BaseType)
	f.Scale = fs.Scale
	f.Offset = fs.Offset
	f.Units = fs.Units
	f.Accumulate = fs.Accumulate
	f.IsArray = fs.Array
	f.Components = componentsFromSpec(fs.Components)
	for _, sfs := range fs.SubFields {
		sf := SubField{
			Name:       sfs.Name,
			Type:       sfs.BaseType,
			Scale:      sfs.Scale,
			Offset:     sfs.Offset,
			Units:      sfs.Units,
			Components: componentsFromSpec(sfs.Components),
		}
		for _, ref := range sfs.Refs {
			sf.Refs = append(sf.Refs, SubFieldRef{FieldName: ref.Field, Value: ref.Value})
		}
		f.SubFields = append(f.SubFields, sf)
	}
	return f
}

func componentsFromSpec(specs []profile.ComponentSpec) []Component {
	if len(specs) == 0 {
		return nil
	}
	out := make([]Component, len(specs))
	offset := 0
	for i, cs := range specs {
		out[i] = Component{
			FieldNum:   cs.Num,
			Bits:       cs.Bits,
			BitOffset:  offset,
			Scale:      cs.Scale,
			Offset:     cs.Offset,
			Accumulate: cs.Accumulate,
		}
		offset += int(cs.Bits)
	}
	return out
}
