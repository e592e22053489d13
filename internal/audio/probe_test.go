package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTone(t *testing.T, path string, sampleRate, seconds int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, sampleRate*seconds)
	for i := range data {
		data[i] = (i % 64) * 256
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
}

func TestProbeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.wav")
	writeTone(t, path, 16000, 2)

	info, err := Probe(path)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if info.SampleRate != 16000 || info.Channels != 1 || info.BitDepth != 16 {
		t.Fatalf("unexpected header: %+v", info)
	}
	if info.Duration != 2*time.Second {
		t.Fatalf("duration = %v", info.Duration)
	}
}

func TestProbeRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.wav")
	if err := os.WriteFile(path, []byte("definitely not riff data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Probe(path); !errors.Is(err, ErrNotWAV) {
		t.Fatalf("expected ErrNotWAV, got %v", err)
	}
}

func TestIsWAV(t *testing.T) {
	cases := map[string]bool{
		"a.wav":      true,
		"b.WAV":      true,
		"c.flac":     false,
		"dir/d":      false,
		"e.wav.json": false,
	}
	for in, want := range cases {
		if got := IsWAV(in); got != want {
			t.Fatalf("IsWAV(%q)=%v want %v", in, got, want)
		}
	}
}
