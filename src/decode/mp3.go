package decode

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// Mp3Decoder decodes MP3 files via github.com/hajimehoshi/go-mp3, which
// always emits 16-bit little-endian stereo.
type Mp3Decoder struct{}

func (Mp3Decoder) Decode(r io.Reader) (*Audio, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("opening mp3 stream: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading mp3 data: %w", err)
	}
	count := len(raw) / 2
	if count == 0 {
		return nil, errors.New("mp3 file holds no audio")
	}
	samples := make([]float64, count)
	for i := 0; i < count; i++ {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float64(v) / 32768
	}
	return fromInterleaved(samples, 2, dec.SampleRate()), nil
}
