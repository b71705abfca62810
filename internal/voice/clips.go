package voice

import (
	"math"
	"math/rand/v2"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

const (
	vibratoRate  = 5.5  // Hz
	vibratoDepth = 0.02 // fraction of the fundamental
	clipGain     = 0.8
)

// renderClip synthesizes one preset at sampleRate. noise supplies the
// texture term and is the only non-deterministic input.
func renderClip(p Preset, sampleRate int, noise *rand.Rand) *audio.Buffer {
	rate := float64(sampleRate)
	n := int(p.Duration.Seconds() * rate)
	attack := p.Attack.Seconds() * rate
	decay := p.Decay.Seconds() * rate

	samples := make([]float32, n)
	var phase float64
	for i := range samples {
		t := float64(i) / rate

		vibrato := 1 + vibratoDepth*math.Sin(2*math.Pi*vibratoRate*t)
		phase += 2 * math.Pi * p.Fundamental * vibrato / rate

		v := 0.5*math.Sin(phase) +
			0.15*math.Sin(2*phase) +
			0.08*math.Sin(3*phase) +
			0.2*math.Sin(2*math.Pi*p.Formant1*t) +
			0.12*math.Sin(2*math.Pi*p.Formant2*t) +
			p.Noise*(noise.Float64()*2-1)

		v *= envelope(float64(i), float64(n), attack, decay) * clipGain
		samples[i] = float32(math.Max(-1, math.Min(1, v)))
	}

	buf, _ := audio.NewBuffer(samples, 1, sampleRate)
	return buf
}

// envelope is a linear attack, flat sustain, linear decay shape over n
// samples.
func envelope(i, n, attack, decay float64) float64 {
	switch {
	case attack > 0 && i < attack:
		return i / attack
	case decay > 0 && i > n-decay:
		return math.Max(0, (n-i)/decay)
	default:
		return 1
	}
}
