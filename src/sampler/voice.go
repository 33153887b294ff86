package sampler

import "math"

// ----- Voice ----- //

const (
	voiceIdle = iota
	voicePlaying
)

// voice is one polyphonic playback slot. Everything it needs is copied at
// trigger time (sample pointer, root note, pitch ratio), so clearing or
// re-keying the owner mid-flight never disturbs a playing voice.
type voice struct {
	state      int
	snd        *sound
	sample     *Sample
	note       int
	rootNote   int
	velocity   float64
	position   float64
	pitchRatio float64
	startedAt  int64     // pool sample clock at trigger, drives stealing order
	out        []float64 // length: samplesPerCycle
}

func newVoice() *voice {
	return &voice{
		state: voiceIdle,
		out:   make([]float64, samplesPerCycle),
	}
}

func pitchRatio(playedNote, rootNote int) float64 {
	return math.Pow(2, float64(playedNote-rootNote)/12)
}

func (v *voice) start(snd *sound, note int, velocity float64, now int64) {
	v.snd = snd
	v.sample = snd.sample
	v.note = note
	v.rootNote = snd.rootNote
	v.velocity = velocity
	v.position = 0
	v.pitchRatio = pitchRatio(note, snd.rootNote)
	v.startedAt = now
	v.state = voicePlaying
}

func (v *voice) stop() {
	v.state = voiceIdle
	v.snd = nil
	v.sample = nil
	v.velocity = 0
	v.position = 0
}

// render fills out[:n] with this voice's contribution: the clip read without
// interpolation at floor(position), channels averaged to mono, scaled by the
// note-on velocity. Frames past the end of the clip are zero and reaching the
// end sends the voice back to idle. The clip never wraps.
func (v *voice) render(n int) {
	if v.state == voicePlaying && (v.sample == nil || v.sample.length == 0) {
		// never happens through the public API, but a broken binding must
		// degrade to silence, not take down the render thread
		v.stop()
	}
	for i := 0; i < n; i++ {
		if v.state != voicePlaying {
			v.out[i] = 0
			continue
		}
		v.out[i] = v.sample.monoAt(int(v.position)) * v.velocity
		v.position += v.pitchRatio
		if v.position >= float64(v.sample.length) {
			v.stop()
		}
	}
}
