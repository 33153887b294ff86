package sampler

import "sync/atomic"

// ----- One-Shot Policy ----- //

// oneShotPolicy is the process-wide toggle consulted at every note-off:
// enabled means note-off is ignored and clips run to completion. Written by
// the control thread, read lock-free by the render thread; a toggle mid-block
// affects only events not yet applied.
type oneShotPolicy struct {
	enabled atomic.Bool
}

func (p *oneShotPolicy) setEnabled(enable bool) {
	p.enabled.Store(enable)
}

func (p *oneShotPolicy) isEnabled() bool {
	return p.enabled.Load()
}
