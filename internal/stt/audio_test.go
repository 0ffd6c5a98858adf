package stt

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeWAV writes a minimal 16-bit PCM RIFF file.
func writeWAV(t *testing.T, path string, sampleRate, channels int, samples []int16) {
	t.Helper()

	dataSize := len(samples) * 2
	buf := make([]byte, 0, 44+dataSize)

	u16 := func(v int) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, uint16(v)); return b }
	u32 := func(v int) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, uint32(v)); return b }

	buf = append(buf, "RIFF"...)
	buf = append(buf, u32(36+dataSize)...)
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = append(buf, u32(16)...)
	buf = append(buf, u16(1)...) // PCM
	buf = append(buf, u16(channels)...)
	buf = append(buf, u32(sampleRate)...)
	buf = append(buf, u32(sampleRate*channels*2)...)
	buf = append(buf, u16(channels*2)...)
	buf = append(buf, u16(16)...)
	buf = append(buf, "data"...)
	buf = append(buf, u32(dataSize)...)
	for _, s := range samples {
		buf = append(buf, u16(int(uint16(s)))...)
	}

	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeWAV_Mono16k(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	samples := []int16{0, 16384, -16384, 32767}
	writeWAV(t, path, targetSampleRate, 1, samples)

	got, err := decodeWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(got), len(samples))
	}
	for i, want := range []float32{0, 0.5, -0.5, 32767.0 / 32768.0} {
		if math.Abs(float64(got[i]-want)) > 1e-6 {
			t.Errorf("sample %d = %g, want %g", i, got[i], want)
		}
	}
}

func TestDecodeWAV_StereoDownmix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	// Interleaved L/R pairs averaging to 100 and -200.
	writeWAV(t, path, targetSampleRate, 2, []int16{50, 150, -100, -300})

	got, err := decodeWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2", len(got))
	}
	if want := float32(100) / 32768.0; got[0] != want {
		t.Errorf("sample 0 = %g, want %g", got[0], want)
	}
	if want := float32(-200) / 32768.0; got[1] != want {
		t.Errorf("sample 1 = %g, want %g", got[1], want)
	}
}

func TestDecodeWAV_Resamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hi.wav")
	samples := make([]int16, 32000) // one second at 32 kHz
	writeWAV(t, path, 32000, 1, samples)

	got, err := decodeWAV(path)
	if err != nil {
		t.Fatal(err)
	}
	// Roughly one second at the target rate.
	if len(got) < targetSampleRate*9/10 || len(got) > targetSampleRate*11/10 {
		t.Errorf("got %d samples, want ~%d", len(got), targetSampleRate)
	}
}

func TestDecodeWAV_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("definitely not a wav file at all......."), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := decodeWAV(path); err == nil {
		t.Fatal("expected error for non-WAV data")
	}
}
