package kit

import (
	"fmt"
	"log"

	"github.com/jinjor/desktop-sampler/src/decode"
)

// Engine is the slice of the sampler's control API the manager drives.
type Engine interface {
	LoadPadSample(pad int, data [][]float64, sourceRate int) bool
	ClearPadSample(pad int)
	LoadNoteSample(note int, data [][]float64, sourceRate int) bool
	ClearNoteSample(note int)
	SetNoteMapping(pad int, note int) error
	GetNoteMapping(pad int) int
	SetOneShot(enable bool)
	OneShot() bool
}

// Manager sits between the UI commands and the engine: it decodes sample
// files, pushes them into the engine, and remembers which path each note was
// loaded from so the setup can be exported again.
type Manager struct {
	registry  *decode.Registry
	notePaths [128]string
	padPaths  [16]string
	lastKit   string
}

func NewManager(registry *decode.Registry) *Manager {
	return &Manager{registry: registry}
}

// LoadNote decodes path and binds it directly to a MIDI note.
func (m *Manager) LoadNote(s Engine, note int, path string) error {
	if note < 0 || note >= len(m.notePaths) {
		return fmt.Errorf("note %d out of range", note)
	}
	a, err := m.registry.DecodeFile(path)
	if err != nil {
		return err
	}
	if !s.LoadNoteSample(note, a.Channels, a.SampleRate) {
		return fmt.Errorf("engine rejected sample %s for note %d", path, note)
	}
	m.notePaths[note] = path
	return nil
}

// LoadPad decodes path and binds it to a pad, keyed by the pad itself.
func (m *Manager) LoadPad(s Engine, pad int, path string) error {
	if pad < 0 || pad >= len(m.padPaths) {
		return fmt.Errorf("pad %d out of range", pad)
	}
	a, err := m.registry.DecodeFile(path)
	if err != nil {
		return err
	}
	if !s.LoadPadSample(pad, a.Channels, a.SampleRate) {
		return fmt.Errorf("engine rejected sample %s for pad %d", path, pad)
	}
	m.padPaths[pad] = path
	return nil
}

func (m *Manager) ClearNote(s Engine, note int) {
	s.ClearNoteSample(note)
	if note >= 0 && note < len(m.notePaths) {
		m.notePaths[note] = ""
	}
}

func (m *Manager) ClearPad(s Engine, pad int) {
	s.ClearPadSample(pad)
	if pad >= 0 && pad < len(m.padPaths) {
		m.padPaths[pad] = ""
	}
}

// Import loads a kit file and replays it into the engine: pad mappings
// first, then every loaded slot cleared (pad-keyed ones included, a kit
// replaces the whole setup), then every referenced sample, then the one-shot
// flag. Samples that fail to decode are logged and skipped so one bad path
// does not lose the rest of the kit.
func (m *Manager) Import(s Engine, path string) error {
	k, err := Load(path)
	if err != nil {
		return err
	}
	for pad, note := range k.PadNotes {
		if err := s.SetNoteMapping(pad, note); err != nil {
			log.Printf("kit import: %v\n", err)
		}
	}
	for pad := range m.padPaths {
		m.ClearPad(s, pad)
	}
	for note := range m.notePaths {
		m.ClearNote(s, note)
	}
	for note, filePath := range k.NotePaths {
		if filePath == "" {
			continue
		}
		if err := m.LoadNote(s, note, filePath); err != nil {
			log.Printf("kit import: note %d: %v\n", note, err)
		}
	}
	s.SetOneShot(k.OneShot)
	m.lastKit = path
	return nil
}

// Export writes the current setup to a kit file.
func (m *Manager) Export(s Engine, path string) error {
	k := New()
	k.OneShot = s.OneShot()
	for pad := range k.PadNotes {
		k.PadNotes[pad] = s.GetNoteMapping(pad)
	}
	k.NotePaths = m.notePaths
	if err := k.Save(path); err != nil {
		return err
	}
	m.lastKit = path
	return nil
}

// LastKit returns the path of the most recently imported or exported kit.
func (m *Manager) LastKit() string {
	return m.lastKit
}
