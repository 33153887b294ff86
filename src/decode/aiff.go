package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
)

var ErrNotAiffFile = errors.New("not an aiff file")

// AiffDecoder decodes AIFF files via github.com/go-audio/aiff.
type AiffDecoder struct{}

func (AiffDecoder) Decode(r io.Reader) (*Audio, error) {
	rs, err := toReadSeeker(r)
	if err != nil {
		return nil, err
	}
	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()
	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, errors.New("aiff file holds no audio")
	}
	scale := intScale(int(dec.BitDepth))

	intBuf := &goaudio.IntBuffer{
		Data:   make([]int, 4096),
		Format: format,
	}
	var samples []float64
	for {
		n, err := dec.PCMBuffer(intBuf)
		if n == 0 {
			break
		}
		for _, v := range intBuf.Data[:n] {
			samples = append(samples, float64(v)/scale)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
	}
	if len(samples) == 0 {
		return nil, errors.New("aiff file holds no audio")
	}
	return fromInterleaved(samples, format.NumChannels, format.SampleRate), nil
}
