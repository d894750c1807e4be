package profile

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fitkit/fit-go/pkg/basetype"
	"github.com/fitkit/fit-go/pkg/version"
)

//go:embed profile.yaml
var profileYAML []byte

// Profile is a parsed profile table.
type Profile struct {
	Version  string     `yaml:"version"`
	Messages []MesgSpec `yaml:"messages"`

	byNum  map[uint16]*MesgSpec
	byName map[string]*MesgSpec
}

// MesgSpec describes one global message.
type MesgSpec struct {
	Name   string      `yaml:"name"`
	Num    uint16      `yaml:"num"`
	Fields []FieldSpec `yaml:"fields"`

	byNum  map[uint8]*FieldSpec
	byName map[string]*FieldSpec
}

// FieldSpec describes one field of a message.
type FieldSpec struct {
	Name       string          `yaml:"name"`
	Num        uint8           `yaml:"num"`
	Type       string          `yaml:"type"`
	Array      bool            `yaml:"array"`
	Scale      float64         `yaml:"scale"`
	Offset     float64         `yaml:"offset"`
	Units      string          `yaml:"units"`
	Accumulate bool            `yaml:"accumulate"`
	Components []ComponentSpec `yaml:"components"`
	SubFields  []SubFieldSpec  `yaml:"subfields"`

	// BaseType is resolved from Type when the profile is parsed.
	BaseType basetype.BaseType `yaml:"-"`
}

// ComponentSpec describes bits of a containing field that expand into
// another field of the same message.
type ComponentSpec struct {
	Num        uint8   `yaml:"num"`
	Bits       uint8   `yaml:"bits"`
	Scale      float64 `yaml:"scale"`
	Offset     float64 `yaml:"offset"`
	Accumulate bool    `yaml:"accumulate"`
}

// SubFieldSpec describes an alternate interpretation of a field that applies
// while a reference field holds one of the listed values.
type SubFieldSpec struct {
	Name       string          `yaml:"name"`
	Type       string          `yaml:"type"`
	Scale      float64         `yaml:"scale"`
	Offset     float64         `yaml:"offset"`
	Units      string          `yaml:"units"`
	Refs       []RefSpec       `yaml:"refs"`
	Components []ComponentSpec `yaml:"components"`

	BaseType basetype.BaseType `yaml:"-"`
}

// RefSpec is one trigger: the sub-field is active when Field holds Value.
type RefSpec struct {
	Field string `yaml:"field"`
	Value int64  `yaml:"value"`
}

var (
	loadOnce sync.Once
	loaded   *Profile
	loadErr  error
)

// Load returns the embedded profile, parsing it on first use.
func Load() (*Profile, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(profileYAML)
	})
	return loaded, loadErr
}

// MustLoad is Load for package initialisation; it panics if the embedded
// profile is malformed.
func MustLoad() *Profile {
	p, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load embedded FIT profile: %v", err))
	}
	return p
}

// Parse parses and validates a YAML profile document.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if err := p.index(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) index() error {
	p.byNum = make(map[uint16]*MesgSpec, len(p.Messages))
	p.byName = make(map[string]*MesgSpec, len(p.Messages))

	for i := range p.Messages {
		m := &p.Messages[i]
		if m.Name == "" {
			return fmt.Errorf("message %d has no name", m.Num)
		}
		if _, dup := p.byNum[m.Num]; dup {
			return fmt.Errorf("duplicate message number %d", m.Num)
		}
		if err := m.index(); err != nil {
			return fmt.Errorf("message %s: %w", m.Name, err)
		}
		p.byNum[m.Num] = m
		p.byName[m.Name] = m
	}
	return nil
}

func (m *MesgSpec) index() error {
	m.byNum = make(map[uint8]*FieldSpec, len(m.Fields))
	m.byName = make(map[string]*FieldSpec, len(m.Fields))

	for i := range m.Fields {
		f := &m.Fields[i]
		bt, err := basetype.Parse(f.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		f.BaseType = bt
		if f.Scale, err = normalizeScale(f.Scale); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		if _, dup := m.byNum[f.Num]; dup {
			return fmt.Errorf("duplicate field number %d", f.Num)
		}
		m.byNum[f.Num] = f
		m.byName[f.Name] = f
	}

	// Second pass: components and refs may point at any field of the message.
	for i := range m.Fields {
		f := &m.Fields[i]
		if err := m.checkComponents(f.Name, f.Components); err != nil {
			return err
		}
		for j := range f.SubFields {
			sf := &f.SubFields[j]
			bt, err := basetype.Parse(sf.Type)
			if err != nil {
				return fmt.Errorf("subfield %s.%s: %w", f.Name, sf.Name, err)
			}
			sf.BaseType = bt
			if sf.Scale, err = normalizeScale(sf.Scale); err != nil {
				return fmt.Errorf("subfield %s.%s: %w", f.Name, sf.Name, err)
			}
			if len(sf.Refs) == 0 {
				return fmt.Errorf("subfield %s.%s has no reference values", f.Name, sf.Name)
			}
			for _, ref := range sf.Refs {
				if _, ok := m.byName[ref.Field]; !ok {
					return fmt.Errorf("subfield %s.%s references unknown field %q", f.Name, sf.Name, ref.Field)
				}
			}
			if err := m.checkComponents(f.Name+"."+sf.Name, sf.Components); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MesgSpec) checkComponents(owner string, comps []ComponentSpec) error {
	for i := range comps {
		c := &comps[i]
		if _, ok := m.byNum[c.Num]; !ok {
			return fmt.Errorf("%s: component targets unknown field %d", owner, c.Num)
		}
		if c.Bits == 0 || c.Bits > 64 {
			return fmt.Errorf("%s: component bit width %d out of range", owner, c.Bits)
		}
		var err error
		if c.Scale, err = normalizeScale(c.Scale); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
	}
	return nil
}

// normalizeScale maps an omitted scale to 1.
func normalizeScale(s float64) (float64, error) {
	switch {
	case s == 0:
		return 1, nil
	case s < 0:
		return 0, fmt.Errorf("negative scale %v", s)
	}
	return s, nil
}

// VersionNumber returns the version as written in a FIT header: 21.158
// becomes 21158 and 20.96 becomes 2096.
func (p *Profile) VersionNumber() (uint16, error) {
	v, err := version.ParseProfile(p.Version)
	if err != nil {
		return 0, fmt.Errorf("profile version: %w", err)
	}
	return v.Number()
}

// Mesg returns the message with the given global number.
func (p *Profile) Mesg(num uint16) (*MesgSpec, bool) {
	m, ok := p.byNum[num]
	return m, ok
}

// MesgByName returns the message with the given profile name.
func (p *Profile) MesgByName(name string) (*MesgSpec, bool) {
	m, ok := p.byName[name]
	return m, ok
}

// MesgName returns the profile name of a message number, or "unknown".
func (p *Profile) MesgName(num uint16) string {
	if m, ok := p.byNum[num]; ok {
		return m.Name
	}
	return "unknown"
}

// Field returns the field with the given number.
func (m *MesgSpec) Field(num uint8) (*FieldSpec, bool) {
	f, ok := m.byNum[num]
	return f, ok
}

// FieldByName returns the field with the given profile name.
func (m *MesgSpec) FieldByName(name string) (*FieldSpec, bool) {
	f, ok := m.byName[name]
	return f, ok
}
