package audio

import (
	"encoding/binary"
	"math"
)

// Resample converts b to the given sample rate and channel count using
// linear interpolation. Channel conversion averages down to mono or
// duplicates mono across channels. b is returned unchanged if it already
// matches.
func Resample(b *Buffer, sampleRate, channels int) *Buffer {
	if b.sampleRate == sampleRate && b.channels == channels {
		return b
	}

	mono := toMono(b)
	ratio := float64(b.sampleRate) / float64(sampleRate)
	frames := int(math.Floor(float64(len(mono)) / ratio))
	out := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		v := interpolate(mono, float64(i)*ratio)
		for c := 0; c < channels; c++ {
			out[i*channels+c] = v
		}
	}

	return &Buffer{samples: out, channels: channels, sampleRate: sampleRate}
}

// PitchShift returns a copy of b played back ratio times faster, which raises
// the pitch by the same factor and shortens the clip. ratio <= 0 or 1 returns b.
func PitchShift(b *Buffer, ratio float64) *Buffer {
	if ratio <= 0 || ratio == 1 {
		return b
	}

	mono := toMono(b)
	frames := int(float64(len(mono)) / ratio)
	out := make([]float32, frames)
	for i := range out {
		out[i] = interpolate(mono, float64(i)*ratio)
	}

	return &Buffer{samples: out, channels: 1, sampleRate: b.sampleRate}
}

// Float32LE encodes samples as little endian IEEE-754 float32 bytes, the
// format the oto context is opened with.
func Float32LE(samples []float32) []byte {
	data := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}
	return data
}

func toMono(b *Buffer) []float32 {
	if b.channels == 1 {
		return b.samples
	}
	frames := b.Frames()
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < b.channels; c++ {
			sum += b.samples[i*b.channels+c]
		}
		mono[i] = sum / float32(b.channels)
	}
	return mono
}

func interpolate(samples []float32, pos float64) float32 {
	idx := int(pos)
	if idx >= len(samples)-1 {
		if len(samples) == 0 {
			return 0
		}
		return samples[len(samples)-1]
	}
	frac := float32(pos - float64(idx))
	return samples[idx]*(1-frac) + samples[idx+1]*frac
}
