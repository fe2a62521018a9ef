package seos

import (
	"sync"

	"github.com/nexus5x-dev/device-google-contexthub/internal/apphdr"
	"github.com/nexus5x-dev/device-google-contexthub/internal/interfaces"
)

// MockTask is a test double implementing interfaces.Task that records
// every call for verification.
type MockTask struct {
	mu sync.Mutex

	InitErr error
	Tid     uint32

	initCalls   int
	unloadCalls int
	handled     []MockHandleCall
}

// MockHandleCall records one Handle invocation.
type MockHandleCall struct {
	EvtType uint32
	EvtData any
}

// NewMockTask returns a MockTask whose Init succeeds.
func NewMockTask() *MockTask {
	return &MockTask{}
}

func (m *MockTask) Init(tid uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	m.Tid = tid
	return m.InitErr
}

func (m *MockTask) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadCalls++
}

func (m *MockTask) Handle(evtType uint32, evtData any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handled = append(m.handled, MockHandleCall{EvtType: evtType, EvtData: evtData})
}

// InitCalls returns how many times Init was called.
func (m *MockTask) InitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCalls
}

// UnloadCalls returns how many times Unload was called.
func (m *MockTask) UnloadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unloadCalls
}

// Handled returns a copy of every Handle call recorded so far.
func (m *MockTask) Handled() []MockHandleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockHandleCall, len(m.handled))
	copy(out, m.handled)
	return out
}

// MockPlatformLoader implements interfaces.PlatformLoader, returning a
// fresh *MockTask (or a configured error) for every load request.
type MockPlatformLoader struct {
	mu sync.Mutex

	FailInternalAppIDs map[uint64]bool
	FailExternalAppIDs map[uint64]bool

	internalLoads int
	externalLoads int
	Tasks         []*MockTask
}

// NewMockPlatformLoader returns a loader that succeeds for every app id.
func NewMockPlatformLoader() *MockPlatformLoader {
	return &MockPlatformLoader{}
}

func (l *MockPlatformLoader) LoadInternal(hdr apphdr.Header) (interfaces.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.internalLoads++
	if l.FailInternalAppIDs[hdr.AppID] {
		return nil, NewError("LoadInternal", ErrCodeTaskInitFailed, "mock configured to fail")
	}
	task := NewMockTask()
	l.Tasks = append(l.Tasks, task)
	return task, nil
}

func (l *MockPlatformLoader) LoadExternal(hdr apphdr.Header) (interfaces.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.externalLoads++
	if l.FailExternalAppIDs[hdr.AppID] {
		return nil, NewError("LoadExternal", ErrCodeTaskInitFailed, "mock configured to fail")
	}
	task := NewMockTask()
	l.Tasks = append(l.Tasks, task)
	return task, nil
}

// InternalLoads returns how many times LoadInternal was called.
func (l *MockPlatformLoader) InternalLoads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.internalLoads
}

// ExternalLoads returns how many times LoadExternal was called.
func (l *MockPlatformLoader) ExternalLoads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.externalLoads
}

var (
	_ interfaces.Task           = (*MockTask)(nil)
	_ interfaces.PlatformLoader = (*MockPlatformLoader)(nil)
)
