package sim

import "github.com/navwar/navsim/pkg/core"

// Recorder consumes the structured telemetry the core emits during a tick.
// Implementations decide buffering and persistence; the core never blocks on
// formatting or I/O concerns beyond these calls.
type Recorder interface {
	RecordTimeState(t core.TimeState)
	RecordUnitState(s core.UnitState)
	RecordDetection(e core.DetectionEvent)
	RecordDamage(e core.DamageEvent)
	RecordSinking(e core.SinkEvent)
}

// NopRecorder discards all telemetry.
type NopRecorder struct{}

func (NopRecorder) RecordTimeState(core.TimeState)       {}
func (NopRecorder) RecordUnitState(core.UnitState)       {}
func (NopRecorder) RecordDetection(core.DetectionEvent)  {}
func (NopRecorder) RecordDamage(core.DamageEvent)        {}
func (NopRecorder) RecordSinking(core.SinkEvent)         {}
