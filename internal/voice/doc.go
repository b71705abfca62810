// Package voice produces speech-like babble without an external engine.
//
// A Synthesizer renders a fixed bank of syllable clips from acoustic
// presets, plans an utterance from text (syllable counts, punctuation pauses
// and a question or statement pitch contour) and either renders the plan to
// one buffer or hands it to a Driver for timed, cancellable playback.
package voice
