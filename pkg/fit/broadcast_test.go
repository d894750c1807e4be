package fit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fitkit/fit-go/pkg/fit"
	"github.com/fitkit/fit-go/pkg/fit/mocks"
	"github.com/fitkit/fit-go/pkg/profile"
)

func TestBroadcasterDeliversInOrder(t *testing.T) {
	var b fit.Broadcaster
	m := fit.DefaultFactory().CreateMesg(profile.MesgNumRecord)

	var order []string
	first := mocks.NewMesgListener(t)
	first.EXPECT().OnMesg(m).Run(func(*fit.Mesg) { order = append(order, "first") }).Once()
	second := mocks.NewMesgListener(t)
	second.EXPECT().OnMesg(m).Run(func(*fit.Mesg) { order = append(order, "second") }).Once()

	h1 := b.AddMesgListener(first)
	h2 := b.AddMesgListener(second)
	assert.True(t, h1.Valid())
	assert.NotEqual(t, h1, h2)

	b.OnMesg(m)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBroadcasterRemoveListener(t *testing.T) {
	var b fit.Broadcaster
	l := mocks.NewMesgListener(t)
	h := b.AddMesgListener(l)

	assert.True(t, b.RemoveListener(h))
	assert.False(t, b.RemoveListener(h))
	assert.False(t, b.RemoveListener(fit.Handle{}))

	// no expectations: a call would fail the mock
	b.OnMesg(fit.NewMesg("record", profile.MesgNumRecord))
}

func TestBroadcasterRemoveDuringBroadcast(t *testing.T) {
	var b fit.Broadcaster
	var second fit.Handle
	calls := 0

	first := mocks.NewMesgListener(t)
	first.EXPECT().OnMesg(mock.Anything).Run(func(*fit.Mesg) {
		b.RemoveListener(second)
	}).Once()
	b.AddMesgListener(first)
	second = b.AddMesgListener(fit.MesgListenerFunc(func(*fit.Mesg) { calls++ }))

	b.OnMesg(fit.NewMesg("record", profile.MesgNumRecord))
	assert.Zero(t, calls, "removed listener must be skipped")
}

func TestBroadcasterAddDuringBroadcast(t *testing.T) {
	var b fit.Broadcaster
	late := 0
	b.AddMesgListener(fit.MesgListenerFunc(func(*fit.Mesg) {
		b.AddMesgListener(fit.MesgListenerFunc(func(*fit.Mesg) { late++ }))
	}))

	b.OnMesg(fit.NewMesg("record", profile.MesgNumRecord))
	assert.Zero(t, late)
	b.OnMesg(fit.NewMesg("record", profile.MesgNumRecord))
	assert.Equal(t, 1, late)
}

func TestBroadcasterDefinitionsAndDescriptions(t *testing.T) {
	var b fit.Broadcaster
	def := &fit.MesgDefinition{Num: profile.MesgNumRecord}
	desc := &fit.DeveloperFieldDescription{FieldName: "doughnuts"}

	defs := mocks.NewMesgDefinitionListener(t)
	defs.EXPECT().OnMesgDefinition(def).Return().Once()
	descs := mocks.NewDeveloperFieldDescriptionListener(t)
	descs.EXPECT().OnDeveloperFieldDescription(desc).Return().Once()

	b.AddMesgDefinitionListener(defs)
	b.AddDeveloperFieldDescriptionListener(descs)

	b.OnMesgDefinition(def)
	b.OnDeveloperFieldDescription(desc)
}

func TestBroadcasterChains(t *testing.T) {
	var upstream, downstream fit.Broadcaster
	var c fit.MesgCollector
	downstream.AddMesgListener(&c)
	upstream.AddMesgListener(&downstream)

	upstream.OnMesg(fit.NewMesg("record", profile.MesgNumRecord))
	upstream.OnMesg(fit.NewMesg("lap", profile.MesgNumLap))

	assert.Len(t, c.Mesgs(), 2)
	assert.Len(t, c.MesgsByNum(profile.MesgNumLap), 1)

	c.Reset()
	assert.Empty(t, c.Mesgs())
}
