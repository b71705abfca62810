// Package wav reads and writes RIFF/WAVE containers of integer PCM audio.
//
// The decoder reads the format fields at the fixed offsets used by a
// canonical 44-byte header (the layout Piper writes) and scans chunks only to
// locate "data". Files whose "fmt " chunk is not first are not supported.
package wav
