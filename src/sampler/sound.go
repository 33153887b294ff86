package sampler

// ----- Sound ----- //

// sound is a playable binding: a clip plus the note that triggers it. Sounds
// are immutable; re-keying a pad installs a replacement sound so a voice
// triggered under the old root keeps the exact sound it started with.
type sound struct {
	owner    owner
	sample   *Sample
	rootNote int
}

func (s *sound) appliesTo(note int) bool {
	return note == s.rootNote
}

// ----- Sound Registry ----- //

// soundRegistry maps owners to sounds. At most one sound is live per owner;
// assigning replaces atomically under the engine lock. Matching is by root
// note only, so several owners sharing a root all fire on one note-on.
type soundRegistry struct {
	sounds  []*sound
	scratch []*sound // reused by findMatches, render path does not allocate
}

func newSoundRegistry() *soundRegistry {
	return &soundRegistry{
		sounds:  make([]*sound, 0, numPads+numNotes),
		scratch: make([]*sound, 0, numPads+numNotes),
	}
}

func (r *soundRegistry) assign(o owner, sample *Sample, rootNote int) {
	r.retire(o)
	r.sounds = append(r.sounds, &sound{owner: o, sample: sample, rootNote: rootNote})
}

func (r *soundRegistry) retire(o owner) {
	for i := len(r.sounds) - 1; i >= 0; i-- {
		if r.sounds[i].owner == o {
			r.sounds = append(r.sounds[:i], r.sounds[i+1:]...)
		}
	}
}

// remap changes the note that triggers a pad's sound. Only future matching is
// affected: the old sound object is left intact for any voice playing it,
// which keeps the pitch it computed at trigger time.
func (r *soundRegistry) remap(padIndex int, newRootNote int) {
	for i, s := range r.sounds {
		if s.owner == padOwner(padIndex) {
			r.sounds[i] = &sound{owner: s.owner, sample: s.sample, rootNote: newRootNote}
		}
	}
}

func (r *soundRegistry) find(o owner) *sound {
	for _, s := range r.sounds {
		if s.owner == o {
			return s
		}
	}
	return nil
}

// findMatches returns every sound triggered by note. The returned slice is
// valid until the next call.
func (r *soundRegistry) findMatches(note int) []*sound {
	r.scratch = r.scratch[:0]
	for _, s := range r.sounds {
		if s.appliesTo(note) {
			r.scratch = append(r.scratch, s)
		}
	}
	return r.scratch
}

func (r *soundRegistry) anyAppliesTo(note int) bool {
	for _, s := range r.sounds {
		if s.appliesTo(note) {
			return true
		}
	}
	return false
}
