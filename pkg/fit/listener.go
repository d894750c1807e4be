package fit

// MesgListener receives decoded messages.
type MesgListener interface {
	OnMesg(m *Mesg)
}

// MesgListenerFunc adapts a function to MesgListener.
type MesgListenerFunc func(m *Mesg)

func (f MesgListenerFunc) OnMesg(m *Mesg) { f(m) }

// MesgDefinitionListener receives definition records.
type MesgDefinitionListener interface {
	OnMesgDefinition(d *MesgDefinition)
}

// MesgDefinitionListenerFunc adapts a function to MesgDefinitionListener.
type MesgDefinitionListenerFunc func(d *MesgDefinition)

func (f MesgDefinitionListenerFunc) OnMesgDefinition(d *MesgDefinition) { f(d) }

// DeveloperFieldDescriptionListener receives developer field descriptions.
type DeveloperFieldDescriptionListener interface {
	OnDeveloperFieldDescription(d *DeveloperFieldDescription)
}

// DeveloperFieldDescriptionListenerFunc adapts a function to
// DeveloperFieldDescriptionListener.
type DeveloperFieldDescriptionListenerFunc func(d *DeveloperFieldDescription)

func (f DeveloperFieldDescriptionListenerFunc) OnDeveloperFieldDescription(d *DeveloperFieldDescription) {
	f(d)
}

// Compile-time interface satisfaction checks.
var (
	_ MesgListener                      = MesgListenerFunc(nil)
	_ MesgDefinitionListener            = MesgDefinitionListenerFunc(nil)
	_ DeveloperFieldDescriptionListener = DeveloperFieldDescriptionListenerFunc(nil)
)
