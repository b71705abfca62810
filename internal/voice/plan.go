package voice

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	syllableGap   = 20 * time.Millisecond
	sentencePause = 250 * time.Millisecond
	clausePause   = 150 * time.Millisecond
	wordPause     = 80 * time.Millisecond

	questionRise  = 0.25
	questionSpan  = 0.3
	statementFall = 0.08
	pitchJitter   = 0.04
	stressBoost   = 0.06
)

// Step is one element of an utterance: a clip at a pitch, or a pause when
// Clip is negative. Gap is the time from the start of this step to the start
// of the next.
type Step struct {
	Clip  int
	Pitch float64
	Gap   time.Duration
	Word  int
}

// IsPause reports whether the step plays nothing.
func (s Step) IsPause() bool {
	return s.Clip < 0
}

// Plan turns text into a sequence of syllable and pause steps.
func (s *Synthesizer) Plan(text string) []Step {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	question := strings.HasSuffix(strings.TrimSpace(text), "?")
	consonants, vowels := indicesOf(Consonant), indicesOf(Vowel)
	all := make([]int, len(Presets))
	for i := range all {
		all[i] = i
	}

	var plan []Step
	for wi, word := range words {
		contour := contourAt(wi, len(words), question)
		syllables := CountSyllables(word)

		for si := range syllables {
			choices := all
			switch {
			case syllables > 1 && si == 0:
				choices = consonants
			case si == syllables-1:
				choices = vowels
			}
			clip := s.pick(choices)

			offset := contour + s.jitter(pitchJitter)
			if si == 0 {
				offset += stressBoost
			}
			pitch := s.cfg.BasePitch * (1 + offset)

			plan = append(plan, Step{
				Clip:  clip,
				Pitch: pitch,
				Gap:   clipLength(clip, pitch) + syllableGap,
				Word:  wi,
			})
		}

		plan = append(plan, Step{Clip: -1, Gap: pauseAfter(word), Word: wi})
	}
	return plan
}

// contourAt is the intonation offset for word i of n. Questions rise over
// the final part of the utterance; statements drift slightly down.
func contourAt(i, n int, question bool) float64 {
	if !question {
		if n == 1 {
			return 0
		}
		return -statementFall * float64(i) / float64(n-1)
	}

	start := int(float64(n) * (1 - questionSpan))
	if i < start {
		return 0
	}
	return questionRise * float64(i-start+1) / float64(n-start)
}

// pauseAfter picks the silence following a word from its final punctuation.
func pauseAfter(word string) time.Duration {
	word = strings.TrimRight(word, "\"')]}»”’")
	r, _ := utf8.DecodeLastRuneInString(word)
	switch r {
	case '.', '!', '?':
		return sentencePause
	case ',', ';', ':':
		return clausePause
	default:
		return wordPause
	}
}
