package sampler

import (
	"log"
	"time"
)

// ----- MIDI Event ----- //

const (
	eventNoteOn = iota
	eventNoteOff
	eventOther
)

type midiEvent struct {
	kind     int
	channel  int
	note     int
	velocity float64 // 0-1
	at       time.Time
}

// offsetEvent is a drained event annotated with its frame offset inside the
// upcoming block.
type offsetEvent struct {
	offset int
	event  midiEvent
}

// parseMidiMessage extracts note events from a raw MIDI message. A note-on
// with velocity zero counts as a note-off. Anything else is reported as
// eventOther and ignored by the pool.
func parseMidiMessage(data []byte) (midiEvent, bool) {
	if len(data) < 3 {
		return midiEvent{}, false
	}
	status := data[0] >> 4
	channel := int(data[0] & 0x0f)
	switch {
	case status == 8 || (status == 9 && data[2] == 0):
		return midiEvent{kind: eventNoteOff, channel: channel, note: int(data[1])}, true
	case status == 9:
		return midiEvent{
			kind:     eventNoteOn,
			channel:  channel,
			note:     int(data[1]),
			velocity: float64(data[2]) / 127,
		}, true
	}
	return midiEvent{kind: eventOther, channel: channel}, true
}

// ----- MIDI Router ----- //

// midiRouter merges events from device callbacks and UI goroutines into the
// ordered list the render thread consumes once per block. push never blocks:
// when the queue is full the event is dropped, which beats stalling a device
// callback.
type midiRouter struct {
	events    chan midiEvent
	pending   []offsetEvent
	lastDrain time.Time
}

func newMidiRouter() *midiRouter {
	return &midiRouter{
		events:  make(chan midiEvent, 1024),
		pending: make([]offsetEvent, 0, 256),
	}
}

func (r *midiRouter) push(e midiEvent) {
	if e.at.IsZero() {
		e.at = time.Now()
	}
	select {
	case r.events <- e:
	default:
		log.Println("[WARN] midi event dropped: queue full")
	}
}

func (r *midiRouter) pushRaw(data []byte) {
	e, ok := parseMidiMessage(data)
	if !ok {
		return
	}
	r.push(e)
}

// drain empties the queue and gives each event its frame offset in the block
// about to be rendered, computed from arrival time against the previous
// drain. Offsets are clamped into the block and kept non-decreasing, so
// application order is always arrival order. Render thread only.
func (r *midiRouter) drain(blockFrames int) []offsetEvent {
	now := time.Now()
	if r.lastDrain.IsZero() {
		r.lastDrain = now
	}
	r.pending = r.pending[:0]
	prev := 0
	limit := blockFrames - 1
	if limit < 0 {
		limit = 0
	}
loop:
	for {
		select {
		case e := <-r.events:
			offset := int(e.at.Sub(r.lastDrain).Seconds() * sampleRate)
			if offset < prev {
				offset = prev
			}
			if offset > limit {
				offset = limit
			}
			prev = offset
			r.pending = append(r.pending, offsetEvent{offset: offset, event: e})
		default:
			break loop
		}
	}
	r.lastDrain = now
	return r.pending
}
