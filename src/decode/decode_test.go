package decode

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func expectNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("expected no error, but got: %v", err)
	}
}

func writeWavFile(t *testing.T, path string, channels int, sampleRate int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	expectNoError(t, enc.Write(buf))
	expectNoError(t, enc.Close())
	expectNoError(t, f.Close())
}

func TestDecodeWavFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	// two frames of stereo: L=0.5, R=-0.25
	writeWavFile(t, path, 2, 44100, []int{16384, -8192, 16384, -8192})

	a, err := Basic().DecodeFile(path)
	expectNoError(t, err)
	if len(a.Channels) != 2 {
		t.Fatalf("expected 2 channels, but got: %d", len(a.Channels))
	}
	if a.Frames() != 2 {
		t.Errorf("expected 2 frames, but got: %d", a.Frames())
	}
	if a.SampleRate != 44100 {
		t.Errorf("expected sample rate 44100, but got: %d", a.SampleRate)
	}
	if math.Abs(a.Channels[0][0]-0.5) > 1e-9 {
		t.Errorf("expected left sample 0.5, but got: %v", a.Channels[0][0])
	}
	if math.Abs(a.Channels[1][0]+0.25) > 1e-9 {
		t.Errorf("expected right sample -0.25, but got: %v", a.Channels[1][0])
	}
}

func TestDecodeFileUnknownExtension(t *testing.T) {
	_, err := Basic().DecodeFile("clip.xyz")
	if err == nil {
		t.Errorf("expected an error for an unregistered extension")
	}
}

func TestDecodeRejectsNonWavData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	expectNoError(t, os.WriteFile(path, []byte("not audio"), 0644))
	_, err := Basic().DecodeFile(path)
	if err == nil {
		t.Errorf("expected an error for a corrupt file")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := Basic()
	for _, ext := range []string{"wav", "aiff", "aif", "mp3", "ogg"} {
		if _, ok := r.Get(ext); !ok {
			t.Errorf("expected a decoder for %q", ext)
		}
	}
	if _, ok := r.Get("flac"); ok {
		t.Errorf("expected no decoder for flac")
	}
}
