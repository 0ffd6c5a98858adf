package stt

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeozeozeo/gomplerate"

	"github.com/Lixo88/Subtitleler/internal/ffmpeg"
)

// targetSampleRate is the sample rate whisper.cpp expects.
const targetSampleRate = 16000

// ConvertToFloat32 converts an audio file to 16 kHz mono float32 samples.
// WAV files are decoded in pure Go and resampled as needed; anything else
// goes through ffmpeg.
func ConvertToFloat32(ctx context.Context, path string) ([]float32, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		samples, err := decodeWAV(path)
		if err == nil {
			return samples, nil
		}
		slog.Debug("pure Go wav decode failed, falling back to ffmpeg", "file", filepath.Base(path), "err", err)
	}

	if !ffmpeg.Available() {
		return nil, fmt.Errorf("ffmpeg required to decode %s files", filepath.Ext(path))
	}

	pcm, err := ffmpeg.DecodePCM16(ctx, path, targetSampleRate)
	if err != nil {
		return nil, err
	}
	return int16ToFloat32(bytesToInt16(pcm)), nil
}

// decodeWAV reads a 16-bit PCM RIFF/WAVE file, downmixes to mono and
// resamples to the target rate.
func decodeWAV(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}

	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		format     int
		channels   int
		sampleRate int
		bits       int
		pcm        []byte
	)

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("short fmt chunk")
			}
			format = int(binary.LittleEndian.Uint16(data[body:]))
			channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			bits = int(binary.LittleEndian.Uint16(data[body+14:]))
		case "data":
			pcm = data[body : body+size]
		}

		off = body + size
		if size%2 == 1 {
			off++ // chunks are word-aligned
		}
	}

	if format != 1 || bits != 16 {
		return nil, fmt.Errorf("unsupported wav encoding (format %d, %d-bit)", format, bits)
	}
	if channels <= 0 || sampleRate <= 0 || len(pcm) == 0 {
		return nil, fmt.Errorf("missing fmt or data chunk")
	}

	samples := bytesToInt16(pcm)
	if channels > 1 {
		samples = toMono(samples, channels)
	}
	if sampleRate != targetSampleRate {
		samples = resampleInt16(samples, sampleRate, targetSampleRate)
	}
	return int16ToFloat32(samples), nil
}

// bytesToInt16 converts little-endian PCM bytes to int16 samples.
func bytesToInt16(buf []byte) []int16 {
	samples := make([]int16, 0, len(buf)/2)
	for i := 0; i+1 < len(buf); i += 2 {
		samples = append(samples, int16(binary.LittleEndian.Uint16(buf[i:i+2])))
	}
	return samples
}

// toMono downmixes interleaved multi-channel audio by averaging channels.
func toMono(samples []int16, channels int) []int16 {
	mono := make([]int16, len(samples)/channels)
	for i := 0; i < len(mono); i++ {
		var sum int32
		for ch := 0; ch < channels; ch++ {
			sum += int32(samples[i*channels+ch])
		}
		mono[i] = int16(sum / int32(channels))
	}
	return mono
}

// resampleInt16 converts mono audio between sample rates.
func resampleInt16(samples []int16, fromRate, toRate int) []int16 {
	if fromRate == toRate {
		return samples
	}
	resampler, err := gomplerate.NewResampler(1, fromRate, toRate)
	if err != nil {
		slog.Warn("resampler creation failed, keeping original rate", "err", err)
		return samples
	}
	return resampler.ResampleInt16(samples)
}

// int16ToFloat32 normalizes samples to [-1, 1].
func int16ToFloat32(samples []int16) []float32 {
	result := make([]float32, len(samples))
	for i, s := range samples {
		result[i] = float32(s) / 32768.0
	}
	return result
}
