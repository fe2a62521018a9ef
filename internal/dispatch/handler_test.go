package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus5x-dev/device-google-contexthub/internal/apphdr"
	"github.com/nexus5x-dev/device-google-contexthub/internal/constants"
	"github.com/nexus5x-dev/device-google-contexthub/internal/interfaces"
	"github.com/nexus5x-dev/device-google-contexthub/internal/slab"
	"github.com/nexus5x-dev/device-google-contexthub/internal/tasktable"
)

type recordingTask struct {
	handled []uint32
}

func (r *recordingTask) Init(uint32) error { return nil }
func (r *recordingTask) Unload()           {}
func (r *recordingTask) Handle(evtType uint32, _ any) {
	r.handled = append(r.handled, evtType)
}

type fakeLoader struct{}

func (fakeLoader) LoadInternal(apphdr.Header) (interfaces.Task, error) {
	return &recordingTask{}, nil
}
func (fakeLoader) LoadExternal(apphdr.Header) (interfaces.Task, error) {
	return &recordingTask{}, nil
}

func newTableWithOneTask(t *testing.T) (*tasktable.Table, uint32) {
	table := tasktable.NewTable()
	hdr := apphdr.Header{Magic: constants.HeaderMagic, Version: constants.HeaderVersion, Marker: constants.MarkerInternal, AppID: 1}
	tid, ok := table.Load(hdr, fakeLoader{}, apphdr.LoaderInternal)
	require.True(t, ok)
	table.Init()
	return table, tid
}

func TestHandleSubscribeInsertsIntoKnownTask(t *testing.T) {
	table, tid := newTableWithOneTask(t)
	action := &slab.DeferredAction{Tid: tid, EvtType: 0x10000}

	HandleInternal(table, constants.EvtSubscribe, action)

	task, _ := table.ByTid(tid)
	assert.True(t, task.Subs.Contains(0x10000))
}

func TestHandleSubscribeUnknownTidSilentlyDropped(t *testing.T) {
	table, _ := newTableWithOneTask(t)
	action := &slab.DeferredAction{Tid: 9999, EvtType: 0x10000}

	assert.NotPanics(t, func() { HandleInternal(table, constants.EvtSubscribe, action) })
}

func TestHandleUnsubscribeRemoves(t *testing.T) {
	table, tid := newTableWithOneTask(t)
	task, _ := table.ByTid(tid)
	task.Subs.Insert(0x10000)

	HandleInternal(table, constants.EvtUnsubscribe, &slab.DeferredAction{Tid: tid, EvtType: 0x10000})

	assert.False(t, task.Subs.Contains(0x10000))
}

func TestHandleDeferredCallbackInvokesExactlyOnce(t *testing.T) {
	table, _ := newTableWithOneTask(t)
	calls := 0
	action := &slab.DeferredAction{
		Callback: func(cookie any) { calls++ },
		Cookie:   "ck",
	}

	HandleInternal(table, constants.EvtDeferredCallback, action)
	assert.Equal(t, 1, calls)
}

func TestHandlePrivateEventDeliversAndFrees(t *testing.T) {
	table, tid := newTableWithOneTask(t)
	task, _ := table.ByTid(tid)

	freed := false
	action := &slab.DeferredAction{
		ToTid:     tid,
		InnerType: 0x20000,
		InnerData: "payload",
		InnerFree: func(any) { freed = true },
	}

	HandleInternal(table, constants.EvtPrivateEvt, action)

	rt := task.App.(*recordingTask)
	assert.Equal(t, []uint32{0x20000}, rt.handled)
	assert.True(t, freed)
}

func TestHandlePrivateEventUnknownTidStillFrees(t *testing.T) {
	table, _ := newTableWithOneTask(t)
	freed := false
	action := &slab.DeferredAction{
		ToTid:     9999,
		InnerType: 0x20000,
		InnerData: "payload",
		InnerFree: func(any) { freed = true },
	}

	HandleInternal(table, constants.EvtPrivateEvt, action)
	assert.True(t, freed, "payload must not leak on a misrouted private event")
}

