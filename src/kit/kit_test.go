package kit

import (
	"path/filepath"
	"testing"

	"github.com/jinjor/desktop-sampler/src/decode"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func TestKitDefaults(t *testing.T) {
	k := New()
	for i, note := range k.PadNotes {
		if note != 36+i {
			t.Errorf("pad %d: expected note %d, but got: %d", i, 36+i, note)
		}
	}
	for note, path := range k.NotePaths {
		if path != "" {
			t.Errorf("note %d: expected no sample path, but got: %q", note, path)
		}
	}
}

func TestKitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drums.json")
	k := New()
	k.OneShot = true
	k.PadNotes[0] = 60
	k.NotePaths[60] = "/samples/kick.wav"
	k.NotePaths[37] = "/samples/snare.wav"
	expectNoError(t, k.Save(path))

	loaded, err := Load(path)
	expectNoError(t, err)
	if !loaded.OneShot {
		t.Errorf("expected one-shot to survive the round trip")
	}
	if loaded.PadNotes[0] != 60 {
		t.Errorf("expected pad 0 on note 60, but got: %d", loaded.PadNotes[0])
	}
	if loaded.PadNotes[1] != 37 {
		t.Errorf("expected pad 1 on note 37, but got: %d", loaded.PadNotes[1])
	}
	if loaded.NotePaths[60] != "/samples/kick.wav" {
		t.Errorf("unexpected path for note 60: %q", loaded.NotePaths[60])
	}
	if loaded.NotePaths[37] != "/samples/snare.wav" {
		t.Errorf("unexpected path for note 37: %q", loaded.NotePaths[37])
	}
}

func TestKitLoadIgnoresBadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit.json")
	k := New()
	expectNoError(t, k.Save(path))

	loaded, err := Load(path)
	expectNoError(t, err)
	if loaded.PadNotes != k.PadNotes {
		t.Errorf("expected default pads to survive the round trip")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected an error for a missing kit file")
	}
}

func TestSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	expectNoError(t, err)
	if !s.OneShot {
		t.Errorf("expected one-shot to default to on")
	}
	if s.LastKit != "" {
		t.Errorf("expected no last kit, but got: %q", s.LastKit)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "settings.yaml")
	s := &Settings{LastKit: "/kits/drums.json", OneShot: false, MidiPrefix: "LPD8"}
	expectNoError(t, s.Save(path))

	loaded, err := LoadSettings(path)
	expectNoError(t, err)
	if loaded.LastKit != s.LastKit {
		t.Errorf("expected last kit %q, but got: %q", s.LastKit, loaded.LastKit)
	}
	if loaded.OneShot {
		t.Errorf("expected one-shot to load as off")
	}
	if loaded.MidiPrefix != "LPD8" {
		t.Errorf("expected midi prefix %q, but got: %q", "LPD8", loaded.MidiPrefix)
	}
}

// fakeEngine records the control calls the manager makes.
type fakeEngine struct {
	padNotes   [16]int
	padLoaded  [16]bool
	noteLoaded [128]bool
	oneShot    bool
}

func (e *fakeEngine) LoadPadSample(pad int, data [][]float64, sourceRate int) bool {
	e.padLoaded[pad] = true
	return true
}

func (e *fakeEngine) ClearPadSample(pad int) {
	e.padLoaded[pad] = false
}

func (e *fakeEngine) LoadNoteSample(note int, data [][]float64, sourceRate int) bool {
	e.noteLoaded[note] = true
	return true
}

func (e *fakeEngine) ClearNoteSample(note int) {
	e.noteLoaded[note] = false
}

func (e *fakeEngine) SetNoteMapping(pad int, note int) error {
	e.padNotes[pad] = note
	return nil
}

func (e *fakeEngine) GetNoteMapping(pad int) int {
	return e.padNotes[pad]
}

func (e *fakeEngine) SetOneShot(enable bool) {
	e.oneShot = enable
}

func (e *fakeEngine) OneShot() bool {
	return e.oneShot
}

func TestImportReplacesWholeSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kit.json")
	k := New()
	k.OneShot = true
	k.PadNotes[0] = 60
	expectNoError(t, k.Save(path))

	// a setup left over from before the import, pad-keyed samples included
	e := &fakeEngine{}
	e.padLoaded[3] = true
	e.noteLoaded[40] = true
	m := NewManager(decode.Basic())
	m.padPaths[3] = "/samples/old-pad.wav"
	m.notePaths[40] = "/samples/old-note.wav"

	expectNoError(t, m.Import(e, path))
	for pad, loaded := range e.padLoaded {
		if loaded {
			t.Errorf("pad %d: expected the old sample to be cleared", pad)
		}
	}
	for note, loaded := range e.noteLoaded {
		if loaded {
			t.Errorf("note %d: expected the old sample to be cleared", note)
		}
	}
	if m.padPaths[3] != "" || m.notePaths[40] != "" {
		t.Errorf("expected recorded paths to be cleared")
	}
	if e.padNotes[0] != 60 {
		t.Errorf("expected pad 0 on note 60, but got: %d", e.padNotes[0])
	}
	if !e.oneShot {
		t.Errorf("expected one-shot to be applied from the kit")
	}
	if m.LastKit() != path {
		t.Errorf("expected last kit %q, but got: %q", path, m.LastKit())
	}
}

func TestManagerRejectsUndecodableFiles(t *testing.T) {
	m := NewManager(decode.Basic())
	if err := m.LoadNote(nil, 60, "sample.xyz"); err == nil {
		t.Errorf("expected an error for an unsupported format")
	}
	if err := m.LoadNote(nil, 128, "sample.wav"); err == nil {
		t.Errorf("expected an error for an out-of-range note")
	}
	if err := m.LoadPad(nil, 16, "sample.wav"); err == nil {
		t.Errorf("expected an error for an out-of-range pad")
	}
}
