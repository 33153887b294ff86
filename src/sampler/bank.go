package sampler

import (
	"errors"
	"fmt"
)

var errEmptyBuffer = errors.New("sample buffer is empty")

// ----- Owner ----- //

type ownerKind int

const (
	ownerPad ownerKind = iota
	ownerNote
)

// owner keys a sample slot: either one of the 16 pads, or a MIDI note that a
// sample was assigned to directly.
type owner struct {
	kind  ownerKind
	index int
}

func padOwner(index int) owner {
	return owner{kind: ownerPad, index: index}
}

func noteOwner(note int) owner {
	return owner{kind: ownerNote, index: note}
}

func (o owner) valid() bool {
	switch o.kind {
	case ownerPad:
		return o.index >= 0 && o.index < numPads
	case ownerNote:
		return o.index >= 0 && o.index < numNotes
	}
	return false
}

func (o owner) String() string {
	switch o.kind {
	case ownerPad:
		return fmt.Sprintf("pad %d", o.index)
	case ownerNote:
		return fmt.Sprintf("note %d", o.index)
	}
	return "invalid owner"
}

// ----- Sample Bank ----- //

// sampleBank owns the loaded clips, one slot per pad and one per MIDI note.
// Slots hold immutable *Sample values; clearing or replacing a slot only
// drops the bank's reference, any voice still reading the old buffer keeps
// it alive until it goes idle.
type sampleBank struct {
	pads  [numPads]*Sample
	notes [numNotes]*Sample
}

func (b *sampleBank) load(o owner, data [][]float64, sourceRate int) (*Sample, error) {
	if !o.valid() {
		return nil, fmt.Errorf("cannot load sample: %s out of range", o)
	}
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, errEmptyBuffer
	}
	for _, ch := range data {
		if len(ch) != len(data[0]) {
			return nil, errors.New("sample channels have mismatched lengths")
		}
	}
	s := newSample(data, sourceRate)
	b.put(o, s)
	return s, nil
}

func (b *sampleBank) clear(o owner) {
	if !o.valid() {
		return
	}
	b.put(o, nil)
}

func (b *sampleBank) put(o owner, s *Sample) {
	switch o.kind {
	case ownerPad:
		b.pads[o.index] = s
	case ownerNote:
		b.notes[o.index] = s
	}
}

func (b *sampleBank) get(o owner) *Sample {
	if !o.valid() {
		return nil
	}
	switch o.kind {
	case ownerPad:
		return b.pads[o.index]
	case ownerNote:
		return b.notes[o.index]
	}
	return nil
}

func (b *sampleBank) loaded(o owner) bool {
	return b.get(o) != nil
}
