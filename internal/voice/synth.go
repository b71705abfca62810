package voice

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// Config configures a Synthesizer.
type Config struct {
	SampleRate int
	BasePitch  float64
	Seed       uint64
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		BasePitch:  1.0,
		Seed:       1,
	}
}

// Synthesizer owns the clip bank and the random source used for clip choice
// and pitch jitter. It is safe for concurrent use.
type Synthesizer struct {
	cfg Config

	once  sync.Once
	clips []*audio.Buffer

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer creates a synthesizer. Zero fields of cfg take their
// defaults. Clips are generated on first use.
func NewSynthesizer(cfg Config) *Synthesizer {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.BasePitch <= 0 {
		cfg.BasePitch = def.BasePitch
	}
	return &Synthesizer{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// SampleRate is the rate of every clip and rendered buffer.
func (s *Synthesizer) SampleRate() int {
	return s.cfg.SampleRate
}

// Clips returns the clip bank, indexed like Presets.
func (s *Synthesizer) Clips() []*audio.Buffer {
	s.once.Do(func() {
		// Noise gets its own stream: the bank depends on Seed alone.
		noise := rand.New(rand.NewPCG(s.cfg.Seed, s.cfg.Seed^0xd1b54a32d192ed03))
		s.clips = make([]*audio.Buffer, len(Presets))
		for i, p := range Presets {
			s.clips[i] = renderClip(p, s.cfg.SampleRate, noise)
		}
	})
	return s.clips
}

// Clip returns the pitched clip for a step, or nil for a pause.
func (s *Synthesizer) Clip(step Step) *audio.Buffer {
	if step.IsPause() {
		return nil
	}
	return audio.PitchShift(s.Clips()[step.Clip], step.Pitch)
}

// Render mixes a plan into a single mono buffer. An empty plan yields an
// empty buffer.
func (s *Synthesizer) Render(plan []Step) *audio.Buffer {
	rate := float64(s.cfg.SampleRate)

	var out []float32
	cursor := 0
	for _, step := range plan {
		if clip := s.Clip(step); clip != nil {
			if end := cursor + clip.Len(); end > len(out) {
				out = append(out, make([]float32, end-len(out))...)
			}
			for i, v := range clip.Samples() {
				out[cursor+i] = clampSample(out[cursor+i] + v)
			}
		}
		cursor += int(step.Gap.Seconds() * rate)
	}
	if cursor > len(out) {
		out = append(out, make([]float32, cursor-len(out))...)
	}

	buf, _ := audio.NewBuffer(out, 1, s.cfg.SampleRate)
	return buf
}

// jitter returns a uniform value in [-amount, amount].
func (s *Synthesizer) jitter(amount float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.rng.Float64()*2 - 1) * amount
}

// pick returns a uniform element of choices.
func (s *Synthesizer) pick(choices []int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return choices[s.rng.IntN(len(choices))]
}

func clampSample(v float32) float32 {
	return max(-1, min(1, v))
}

// clipLength is the played length of preset i at pitch.
func clipLength(i int, pitch float64) time.Duration {
	return time.Duration(float64(Presets[i].Duration) / pitch)
}
