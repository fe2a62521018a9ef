package seos

import "github.com/nexus5x-dev/device-google-contexthub/internal/constants"

// Re-export sizing constants for the public API.
const (
	MaxTasks              = constants.MaxTasks
	MaxEmbeddedEvtSubs    = constants.MaxEmbeddedEvtSubs
	InternalQueueCapacity = constants.InternalQueueCapacity
	ExternalQueueCapacity = constants.ExternalQueueCapacity
	SlabSize              = constants.SlabSize
	FirstUserEvent        = constants.FirstUserEvent
	EvtAppStart           = constants.EvtAppStart
)
