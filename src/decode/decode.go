// Package decode turns audio files into the decoded multichannel float PCM
// the sampler engine consumes. Each format wraps an ecosystem decoder behind
// a common interface; a registry picks the decoder by file extension.
package decode

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Audio is one fully decoded clip: planar float channels plus the clip's
// native sample rate.
type Audio struct {
	Channels   [][]float64
	SampleRate int
}

// Frames returns the clip length in frames.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Decoder decodes a whole stream into an Audio.
type Decoder interface {
	Decode(r io.Reader) (*Audio, error)
}

// Registry maps lowercase file extensions (without the dot) to decoders.
type Registry struct {
	mtx    sync.Mutex
	codecs map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

func (r *Registry) Register(ext string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.codecs[ext] = d
}

func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	d, ok := r.codecs[ext]
	return d, ok
}

// Basic returns a registry with every built-in format registered.
func Basic() *Registry {
	r := NewRegistry()
	r.Register("wav", WavDecoder{})
	r.Register("aiff", AiffDecoder{})
	r.Register("aif", AiffDecoder{})
	r.Register("mp3", Mp3Decoder{})
	r.Register("ogg", VorbisDecoder{})
	return r
}

// DecodeFile decodes path using the decoder registered for its extension.
func (r *Registry) DecodeFile(path string) (*Audio, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	d, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("no decoder registered for %q files", ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	a, err := d.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return a, nil
}

// fromInterleaved splits an interleaved buffer into planar channels.
func fromInterleaved(samples []float64, channels int, sampleRate int) *Audio {
	frames := len(samples) / channels
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}
	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			data[ch][f] = samples[f*channels+ch]
		}
	}
	return &Audio{Channels: data, SampleRate: sampleRate}
}

// intScale returns the normalization divisor for signed integer PCM of the
// given bit depth.
func intScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128
	case 16:
		return 32768
	case 24:
		return 8388608
	case 32:
		return 2147483648
	default:
		return 32768
	}
}
