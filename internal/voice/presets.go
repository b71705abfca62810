package voice

import "time"

// Kind groups presets by their acoustic character.
type Kind int

const (
	// Consonant presets are short with a fast attack, high formants and
	// more noise.
	Consonant Kind = iota
	// Vowel presets are longer with a soft attack.
	Vowel
)

func (k Kind) String() string {
	if k == Consonant {
		return "consonant"
	}
	return "vowel"
}

// Preset holds the acoustic parameters of one syllable clip.
type Preset struct {
	Name        string
	Fundamental float64 // Hz
	Duration    time.Duration
	Formant1    float64 // Hz
	Formant2    float64 // Hz
	Attack      time.Duration
	Decay       time.Duration
	Noise       float64 // peak noise amplitude
	Kind        Kind
}

// Presets is the read-only syllable table. Indices are stable.
var Presets = []Preset{
	{Name: "ta", Fundamental: 150, Duration: 70 * time.Millisecond, Formant1: 700, Formant2: 3200, Attack: 4 * time.Millisecond, Decay: 30 * time.Millisecond, Noise: 0.08, Kind: Consonant},
	{Name: "ka", Fundamental: 145, Duration: 80 * time.Millisecond, Formant1: 650, Formant2: 2900, Attack: 5 * time.Millisecond, Decay: 35 * time.Millisecond, Noise: 0.09, Kind: Consonant},
	{Name: "pa", Fundamental: 140, Duration: 65 * time.Millisecond, Formant1: 600, Formant2: 2600, Attack: 3 * time.Millisecond, Decay: 30 * time.Millisecond, Noise: 0.07, Kind: Consonant},
	{Name: "sa", Fundamental: 155, Duration: 90 * time.Millisecond, Formant1: 900, Formant2: 3600, Attack: 8 * time.Millisecond, Decay: 40 * time.Millisecond, Noise: 0.12, Kind: Consonant},
	{Name: "ma", Fundamental: 135, Duration: 85 * time.Millisecond, Formant1: 550, Formant2: 2400, Attack: 6 * time.Millisecond, Decay: 35 * time.Millisecond, Noise: 0.05, Kind: Consonant},
	{Name: "ra", Fundamental: 150, Duration: 75 * time.Millisecond, Formant1: 620, Formant2: 2700, Attack: 5 * time.Millisecond, Decay: 30 * time.Millisecond, Noise: 0.06, Kind: Consonant},
	{Name: "ah", Fundamental: 140, Duration: 180 * time.Millisecond, Formant1: 730, Formant2: 1090, Attack: 25 * time.Millisecond, Decay: 70 * time.Millisecond, Noise: 0.02, Kind: Vowel},
	{Name: "eh", Fundamental: 145, Duration: 160 * time.Millisecond, Formant1: 530, Formant2: 1840, Attack: 22 * time.Millisecond, Decay: 60 * time.Millisecond, Noise: 0.02, Kind: Vowel},
	{Name: "ee", Fundamental: 155, Duration: 150 * time.Millisecond, Formant1: 270, Formant2: 2290, Attack: 20 * time.Millisecond, Decay: 60 * time.Millisecond, Noise: 0.02, Kind: Vowel},
	{Name: "oh", Fundamental: 135, Duration: 200 * time.Millisecond, Formant1: 570, Formant2: 840, Attack: 28 * time.Millisecond, Decay: 80 * time.Millisecond, Noise: 0.015, Kind: Vowel},
	{Name: "oo", Fundamental: 130, Duration: 190 * time.Millisecond, Formant1: 300, Formant2: 870, Attack: 30 * time.Millisecond, Decay: 80 * time.Millisecond, Noise: 0.015, Kind: Vowel},
	{Name: "uh", Fundamental: 140, Duration: 140 * time.Millisecond, Formant1: 520, Formant2: 1190, Attack: 20 * time.Millisecond, Decay: 55 * time.Millisecond, Noise: 0.02, Kind: Vowel},
}

// indicesOf returns the preset indices of kind k.
func indicesOf(k Kind) []int {
	var out []int
	for i, p := range Presets {
		if p.Kind == k {
			out = append(out, i)
		}
	}
	return out
}
