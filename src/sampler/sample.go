package sampler

// ----- Sample ----- //

// Sample is one decoded clip: planar float channels, all the same length,
// plus the rate it was recorded at. A Sample is never mutated after load;
// replacing a slot installs a fresh Sample and voices keep the pointer they
// were triggered with, so an in-flight render never reads freed data.
type Sample struct {
	data       [][]float64
	length     int
	sourceRate int
}

func newSample(data [][]float64, sourceRate int) *Sample {
	return &Sample{
		data:       data,
		length:     len(data[0]),
		sourceRate: sourceRate,
	}
}

// monoAt averages the channels at one frame. Summing and dividing keeps the
// loudness of mono and stereo clips comparable.
func (s *Sample) monoAt(pos int) float64 {
	sum := 0.0
	for _, ch := range s.data {
		sum += ch[pos]
	}
	return sum / float64(len(s.data))
}

// Frames returns the clip length in frames.
func (s *Sample) Frames() int {
	return s.length
}

// SourceRate returns the clip's native sample rate.
func (s *Sample) SourceRate() int {
	return s.sourceRate
}
