package sampler

import "github.com/viterin/vek"

// ----- Voice Pool ----- //

// voicePool is the fixed set of voices. Allocation prefers an idle voice and
// otherwise steals the voice that has been playing longest; with the pool
// larger than the pad count, 16-pad use never steals.
type voicePool struct {
	voices       []*voice
	clock        int64 // frames rendered since start
	lastVelocity [numNotes]float64
}

func newVoicePool(size int) *voicePool {
	voices := make([]*voice, size)
	for i := range voices {
		voices[i] = newVoice()
	}
	return &voicePool{voices: voices}
}

// allocate returns an idle voice, or failing that the oldest playing one.
// The scan is deterministic: lowest start time wins, lowest index on ties.
// Stealing cuts the evicted voice off abruptly; that is the documented
// behavior under polyphony pressure, not a fault.
func (p *voicePool) allocate() *voice {
	var steal *voice
	for _, v := range p.voices {
		if v.state == voiceIdle {
			return v
		}
		if steal == nil || v.startedAt < steal.startedAt {
			steal = v
		}
	}
	return steal
}

// noteOn starts one voice per sound matching note. Several owners sharing a
// root note all fire at once.
func (p *voicePool) noteOn(registry *soundRegistry, note int, velocity float64) {
	if note < 0 || note >= numNotes {
		return
	}
	p.lastVelocity[note] = velocity
	for _, snd := range registry.findMatches(note) {
		p.allocate().start(snd, note, velocity, p.clock)
	}
}

// noteOff releases by pitch: every playing voice triggered by note stops.
// With one-shot enabled the event is ignored entirely.
func (p *voicePool) noteOff(oneShot *oneShotPolicy, note int) {
	if oneShot.isEnabled() {
		return
	}
	for _, v := range p.voices {
		if v.state == voicePlaying && v.note == note {
			v.stop()
		}
	}
}

func (p *voicePool) apply(registry *soundRegistry, oneShot *oneShotPolicy, e midiEvent) {
	switch e.kind {
	case eventNoteOn:
		p.noteOn(registry, e.note, e.velocity)
	case eventNoteOff:
		p.noteOff(oneShot, e.note)
	}
}

// renderBlock mixes every playing voice additively into out (one slice per
// output channel). The block is rendered in segments between event offsets so
// each event takes effect at its own frame.
func (p *voicePool) renderBlock(registry *soundRegistry, oneShot *oneShotPolicy, events []offsetEvent, out [][]float64, frames int) {
	for _, ch := range out {
		clearBuffer(ch[:frames])
	}
	idx := 0
	at := 0
	for at < frames {
		for idx < len(events) && events[idx].offset <= at {
			p.apply(registry, oneShot, events[idx].event)
			idx++
		}
		end := frames
		if idx < len(events) && events[idx].offset < end {
			end = events[idx].offset
		}
		n := end - at
		for _, v := range p.voices {
			if v.state != voicePlaying {
				continue
			}
			v.render(n)
			for _, ch := range out {
				vek.Add_Inplace(ch[at:end], v.out[:n])
			}
		}
		at = end
	}
	for ; idx < len(events); idx++ {
		p.apply(registry, oneShot, events[idx].event)
	}
	p.clock += int64(frames)
}

func clearBuffer(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// ----- Activity ----- //

// noteSounding reports whether any voice triggered by note is still playing.
// Polled by the UI for pad feedback; audio correctness never depends on it.
func (p *voicePool) noteSounding(note int) bool {
	for _, v := range p.voices {
		if v.state == voicePlaying && v.note == note {
			return true
		}
	}
	return false
}

func (p *voicePool) noteVelocity(note int) float64 {
	if note < 0 || note >= numNotes {
		return 0
	}
	return p.lastVelocity[note]
}

func (p *voicePool) playingCount() int {
	count := 0
	for _, v := range p.voices {
		if v.state == voicePlaying {
			count++
		}
	}
	return count
}
