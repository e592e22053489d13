package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

// ErrNotWAV is returned for files without a RIFF/WAVE header.
var ErrNotWAV = errors.New("not a wav file")

// Info describes a WAV header.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// IsWAV reports whether path has a .wav extension.
func IsWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}

// Probe reads the header of a WAV file without decoding its samples.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Info{}, fmt.Errorf("%s: %w", path, ErrNotWAV)
	}
	if err := dec.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("find pcm chunk: %w", err)
	}
	info := Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if bytesPerSec := info.SampleRate * info.Channels * info.BitDepth / 8; bytesPerSec > 0 {
		info.Duration = time.Duration(float64(dec.PCMSize) / float64(bytesPerSec) * float64(time.Second))
	}
	return info, nil
}
