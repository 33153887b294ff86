package sampler

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/hajimehoshi/oto"
)

const (
	sampleRate      = 48000
	channelNum      = 2
	bitDepthInBytes = 2
	samplesPerCycle = 1024
	numPads         = 16
	numNotes        = 128
	numVoices       = 32
	defaultPadNote  = 36 // C2; pads default to C2..C2+15
)
const bytesPerSample = bitDepthInBytes * channelNum
const bufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096
const secPerSample = 1.0 / sampleRate

const defaultVelocity = 100.0 / 127

// triggerNoteOffDelay is how long a UI pad click holds its synthetic note
// before the matching note-off is pushed.
const triggerNoteOffDelay = 200 * time.Millisecond

// ----- State ----- //

// state is everything the control thread mutates and the render thread
// reads. The lock is only ever held for pointer and metadata swaps; decode,
// file I/O and JSON work all happen before it is taken, so Read never blocks
// on anything slow.
type state struct {
	sync.Mutex
	bank     *sampleBank
	registry *soundRegistry
	noteMap  *noteMap
	pool     *voicePool
}

func newState() *state {
	return &state{
		bank:     &sampleBank{},
		registry: newSoundRegistry(),
		noteMap:  newNoteMap(),
		pool:     newVoicePool(numVoices),
	}
}

// ----- Sampler ----- //

// Sampler is the engine facade. The host audio loop pulls rendered blocks
// through Read; the UI collaborator drives everything else through the
// control methods or line commands on CommandCh, and polls the activity
// methods for pad feedback.
type Sampler struct {
	ctx        context.Context
	otoContext *oto.Context
	CommandCh  chan []string
	state      *state
	router     *midiRouter
	oneShot    *oneShotPolicy
	out        [][]float64 // channelNum x samplesPerCycle, render thread only
}

var _ io.Reader = (*Sampler)(nil)

func newSampler() *Sampler {
	out := make([][]float64, channelNum)
	for ch := range out {
		out[ch] = make([]float64, samplesPerCycle)
	}
	commandCh := make(chan []string, 256)
	s := &Sampler{
		ctx:       context.Background(),
		CommandCh: commandCh,
		state:     newState(),
		router:    newMidiRouter(),
		oneShot:   &oneShotPolicy{},
		out:       out,
	}
	go processCommands(s, commandCh)
	return s
}

// NewSampler creates the engine and opens the audio device.
func NewSampler() (*Sampler, error) {
	otoContext, err := oto.NewContext(sampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, err
	}
	s := newSampler()
	s.otoContext = otoContext
	return s, nil
}

// ----- Control API ----- //

// LoadPadSample binds a decoded clip to a pad. The clip triggers on the
// pad's currently mapped note. Returns false when the pad index is out of
// range or the clip is empty; the slot is left as it was.
func (s *Sampler) LoadPadSample(pad int, data [][]float64, sourceRate int) bool {
	s.state.Lock()
	defer s.state.Unlock()
	sample, err := s.state.bank.load(padOwner(pad), data, sourceRate)
	if err != nil {
		log.Printf("failed to load pad sample: %v\n", err)
		return false
	}
	s.state.registry.assign(padOwner(pad), sample, s.state.noteMap.get(pad))
	return true
}

// ClearPadSample unloads a pad. A voice still playing the old clip finishes
// (or is released) on the buffer it started with.
func (s *Sampler) ClearPadSample(pad int) {
	s.state.Lock()
	defer s.state.Unlock()
	s.state.bank.clear(padOwner(pad))
	s.state.registry.retire(padOwner(pad))
}

// LoadNoteSample binds a decoded clip directly to a MIDI note, independent of
// any pad. The note itself is the root, so the clip plays unshifted.
func (s *Sampler) LoadNoteSample(note int, data [][]float64, sourceRate int) bool {
	s.state.Lock()
	defer s.state.Unlock()
	sample, err := s.state.bank.load(noteOwner(note), data, sourceRate)
	if err != nil {
		log.Printf("failed to load note sample: %v\n", err)
		return false
	}
	s.state.registry.assign(noteOwner(note), sample, note)
	return true
}

func (s *Sampler) ClearNoteSample(note int) {
	s.state.Lock()
	defer s.state.Unlock()
	s.state.bank.clear(noteOwner(note))
	s.state.registry.retire(noteOwner(note))
}

// SetNoteMapping re-keys a pad. Future triggers of the pad's sound match the
// new note; a voice already playing under the old note is untouched.
func (s *Sampler) SetNoteMapping(pad int, note int) error {
	s.state.Lock()
	defer s.state.Unlock()
	if err := s.state.noteMap.set(pad, note); err != nil {
		return err
	}
	s.state.registry.remap(pad, note)
	return nil
}

func (s *Sampler) GetNoteMapping(pad int) int {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.noteMap.get(pad)
}

// IsNoteAssigned reports whether any sound, pad-keyed or note-keyed, would
// fire on note.
func (s *Sampler) IsNoteAssigned(note int) bool {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.registry.anyAppliesTo(note)
}

func (s *Sampler) SetOneShot(enable bool) {
	s.oneShot.setEnabled(enable)
}

func (s *Sampler) OneShot() bool {
	return s.oneShot.isEnabled()
}

// ----- MIDI Intake API ----- //

// NoteOn pushes a synthetic note-on. Safe to call from any goroutine.
func (s *Sampler) NoteOn(note int, velocity float64) {
	s.router.push(midiEvent{kind: eventNoteOn, note: note, velocity: velocity})
}

// NoteOff pushes a synthetic note-off. Safe to call from any goroutine.
func (s *Sampler) NoteOff(note int) {
	s.router.push(midiEvent{kind: eventNoteOff, note: note})
}

// PushRawMessage feeds a raw MIDI message from a device callback into the
// router. Safe to call from any goroutine.
func (s *Sampler) PushRawMessage(data []byte) {
	s.router.pushRaw(data)
}

// TriggerPad fires a pad from the UI: a note-on on the pad's mapped note now
// and the matching note-off shortly after, through the same event path a
// hardware key takes.
func (s *Sampler) TriggerPad(pad int, velocity float64) {
	note := s.GetNoteMapping(pad)
	if note < 0 {
		return
	}
	s.NoteOn(note, velocity)
	time.AfterFunc(triggerNoteOffDelay, func() {
		s.NoteOff(note)
	})
}

func (s *Sampler) ReleasePad(pad int) {
	note := s.GetNoteMapping(pad)
	if note < 0 {
		return
	}
	s.NoteOff(note)
}

// ----- Activity API ----- //

// NoteActivity reports whether note is currently sounding and the velocity it
// was last triggered with. For UI feedback only.
func (s *Sampler) NoteActivity(note int) (bool, float64) {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.pool.noteSounding(note), s.state.pool.noteVelocity(note)
}

// PadActivity is NoteActivity through the pad's current mapping.
func (s *Sampler) PadActivity(pad int) (bool, float64) {
	s.state.Lock()
	defer s.state.Unlock()
	note := s.state.noteMap.get(pad)
	if note < 0 {
		return false, 0
	}
	return s.state.pool.noteSounding(note), s.state.pool.noteVelocity(note)
}

// ----- Rendering ----- //

// RenderBlock drains the router and renders one block of frames into out,
// one slice per output channel. Called exactly once per audio period.
func (s *Sampler) RenderBlock(out [][]float64, frames int) {
	events := s.router.drain(frames)
	s.state.Lock()
	s.state.pool.renderBlock(s.state.registry, s.oneShot, events, out, frames)
	s.state.Unlock()
}

func (s *Sampler) Read(buf []byte) (int, error) {
	select {
	case <-s.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
		frames := len(buf) / bytesPerSample
		if frames > samplesPerCycle {
			frames = samplesPerCycle
		}
		s.RenderBlock(s.out, frames)
		for ch := 0; ch < channelNum; ch++ {
			writeBuffer(s.out[ch], buf, frames, ch)
		}
		return frames * bytesPerSample, nil
	}
}

func writeBuffer(out []float64, buf []byte, frames int, ch int) {
	for i := 0; i < frames; i++ {
		value := out[i]
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		const max = 32767
		b := int16(value * max)
		buf[bytesPerSample*i+2*ch] = byte(b)
		buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
	}
}

// ----- Commands ----- //

func processCommands(s *Sampler, commandCh <-chan []string) {
	for command := range commandCh {
		if err := s.update(command); err != nil {
			log.Printf("command %v failed: %v\n", command, err)
		}
	}
	log.Println("processCommands() ended.")
}

func (s *Sampler) update(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}
	switch command[0] {
	case "note_on":
		note, err := parseIntArg(command, 1)
		if err != nil {
			return err
		}
		velocity := defaultVelocity
		if len(command) > 2 {
			v, err := strconv.ParseFloat(command[2], 64)
			if err != nil {
				return err
			}
			velocity = v
		}
		s.NoteOn(note, velocity)
	case "note_off":
		note, err := parseIntArg(command, 1)
		if err != nil {
			return err
		}
		s.NoteOff(note)
	case "pad_on":
		pad, err := parseIntArg(command, 1)
		if err != nil {
			return err
		}
		velocity := defaultVelocity
		if len(command) > 2 {
			v, err := strconv.ParseFloat(command[2], 64)
			if err != nil {
				return err
			}
			velocity = v
		}
		s.TriggerPad(pad, velocity)
	case "pad_off":
		pad, err := parseIntArg(command, 1)
		if err != nil {
			return err
		}
		s.ReleasePad(pad)
	case "map":
		pad, err := parseIntArg(command, 1)
		if err != nil {
			return err
		}
		note, err := parseIntArg(command, 2)
		if err != nil {
			return err
		}
		return s.SetNoteMapping(pad, note)
	case "one_shot":
		if len(command) < 2 {
			return fmt.Errorf("one_shot needs a value")
		}
		s.SetOneShot(command[1] == "true" || command[1] == "on")
	default:
		return fmt.Errorf("unknown command %v", command[0])
	}
	return nil
}

func parseIntArg(command []string, index int) (int, error) {
	if index >= len(command) {
		return 0, fmt.Errorf("%s: missing argument %d", command[0], index)
	}
	value, err := strconv.ParseInt(command[index], 10, 64)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}

// ----- Lifecycle ----- //

// Close ...
func (s *Sampler) Close() error {
	log.Println("Closing Sampler...")
	close(s.CommandCh)
	if s.otoContext == nil {
		return nil
	}
	return s.otoContext.Close()
}

// Start renders into the audio device until ctx is canceled.
func (s *Sampler) Start(ctx context.Context) error {
	p := s.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	s.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, s, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}
