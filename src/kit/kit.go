// Package kit persists the sampler's user-visible setup: kit files (pad
// mappings plus per-note sample paths, JSON) and the small settings file
// (YAML). The engine itself never touches disk; this package decodes files
// and replays them through the engine's control API.
package kit

import (
	"encoding/json"
	"fmt"
	"os"
)

const kitVersion = "1.0"

type kitJSON struct {
	Version     string       `json:"version"`
	OneShotMode bool         `json:"oneShotMode"`
	Buttons     []buttonJSON `json:"buttons"`
	MidiNotes   []noteJSON   `json:"midiNotes"`
}

type buttonJSON struct {
	Index    int    `json:"index"`
	MidiNote int    `json:"midiNote"`
	FilePath string `json:"filePath"`
}

type noteJSON struct {
	MidiNote int    `json:"midiNote"`
	FilePath string `json:"filePath"`
}

// Kit is one saved setup: the 16 pad mappings, a sample path per MIDI note
// (empty means unassigned), and the one-shot flag.
type Kit struct {
	OneShot   bool
	PadNotes  [16]int
	NotePaths [128]string
}

// New returns a kit with the default C2..C2+15 pad layout and no samples.
func New() *Kit {
	k := &Kit{}
	for i := range k.PadNotes {
		k.PadNotes[i] = 36 + i
	}
	return k
}

// Load reads a kit file.
func Load(path string) (*Kit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading kit file: %w", err)
	}
	var j kitJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parsing kit file: %w", err)
	}
	k := New()
	k.OneShot = j.OneShotMode
	for _, b := range j.Buttons {
		if b.Index < 0 || b.Index >= len(k.PadNotes) {
			continue
		}
		if b.MidiNote >= 0 && b.MidiNote < len(k.NotePaths) {
			k.PadNotes[b.Index] = b.MidiNote
		}
	}
	for _, n := range j.MidiNotes {
		if n.MidiNote < 0 || n.MidiNote >= len(k.NotePaths) {
			continue
		}
		k.NotePaths[n.MidiNote] = n.FilePath
	}
	return k, nil
}

// Save writes the kit file.
func (k *Kit) Save(path string) error {
	j := kitJSON{
		Version:     kitVersion,
		OneShotMode: k.OneShot,
		Buttons:     make([]buttonJSON, len(k.PadNotes)),
		MidiNotes:   make([]noteJSON, len(k.NotePaths)),
	}
	for i, note := range k.PadNotes {
		j.Buttons[i] = buttonJSON{
			Index:    i,
			MidiNote: note,
			FilePath: k.NotePaths[note],
		}
	}
	for note, filePath := range k.NotePaths {
		j.MidiNotes[note] = noteJSON{MidiNote: note, FilePath: filePath}
	}
	data, err := json.MarshalIndent(&j, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing kit file: %w", err)
	}
	return nil
}
