package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

var ErrNotWavFile = errors.New("not a wav file")

// WavDecoder decodes RIFF/WAVE files via github.com/go-audio/wav.
type WavDecoder struct{}

func (WavDecoder) Decode(r io.Reader) (*Audio, error) {
	rs, err := toReadSeeker(r)
	if err != nil {
		return nil, err
	}
	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading wav data: %w", err)
	}
	channels := buf.Format.NumChannels
	if channels <= 0 || len(buf.Data) == 0 {
		return nil, errors.New("wav file holds no audio")
	}
	scale := intScale(int(dec.BitDepth))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}
	return fromInterleaved(samples, channels, buf.Format.SampleRate), nil
}

// toReadSeeker hands back r itself when it can seek; otherwise the stream is
// buffered in memory, which go-audio requires.
func toReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering stream: %w", err)
	}
	return bytes.NewReader(data), nil
}
