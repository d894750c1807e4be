package fit

// MesgCollector keeps everything broadcast to it. It implements all three
// listener interfaces.
type MesgCollector struct {
	mesgs       []*Mesg
	definitions []*MesgDefinition
	devFields   []*DeveloperFieldDescription
}

func (c *MesgCollector) OnMesg(m *Mesg) {
	c.mesgs = append(c.mesgs, m)
}

func (c *MesgCollector) OnMesgDefinition(d *MesgDefinition) {
	c.definitions = append(c.definitions, d)
}

func (c *MesgCollector) OnDeveloperFieldDescription(d *DeveloperFieldDescription) {
	c.devFields = append(c.devFields, d)
}

// Mesgs returns the collected messages in broadcast order.
func (c *MesgCollector) Mesgs() []*Mesg { return c.mesgs }

// Definitions returns the collected definitions in broadcast order.
func (c *MesgCollector) Definitions() []*MesgDefinition { return c.definitions }

// DeveloperFieldDescriptions returns the collected descriptions.
func (c *MesgCollector) DeveloperFieldDescriptions() []*DeveloperFieldDescription {
	return c.devFields
}

// MesgsByNum returns the collected messages with the given global number.
func (c *MesgCollector) MesgsByNum(num uint16) []*Mesg {
	var out []*Mesg
	for _, m := range c.mesgs {
		if m.Num == num {
			out = append(out, m)
		}
	}
	return out
}

// Reset drops everything collected.
func (c *MesgCollector) Reset() {
	c.mesgs, c.definitions, c.devFields = nil, nil, nil
}

var (
	_ MesgListener                      = (*MesgCollector)(nil)
	_ MesgDefinitionListener            = (*MesgCollector)(nil)
	_ DeveloperFieldDescriptionListener = (*MesgCollector)(nil)
)
