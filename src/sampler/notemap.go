package sampler

import "fmt"

// ----- Note Map ----- //

// noteMap is the pad-to-note table. Every pad always has exactly one note;
// nothing stops two pads from sharing a note, in which case both fire.
type noteMap struct {
	notes [numPads]int
}

func newNoteMap() *noteMap {
	m := &noteMap{}
	for i := range m.notes {
		m.notes[i] = defaultPadNote + i
	}
	return m
}

func (m *noteMap) set(pad int, note int) error {
	if pad < 0 || pad >= numPads {
		return fmt.Errorf("pad %d out of range", pad)
	}
	if note < 0 || note >= numNotes {
		return fmt.Errorf("note %d out of range", note)
	}
	m.notes[pad] = note
	return nil
}

func (m *noteMap) get(pad int) int {
	if pad < 0 || pad >= numPads {
		return -1
	}
	return m.notes[pad]
}
