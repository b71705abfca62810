package wav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// Encode writes buf as a canonical 44-byte-header PCM WAVE stream with the
// given bit depth (8, 16, 24 or 32).
func Encode(w io.Writer, buf *audio.Buffer, bitDepth int) error {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	bytesPerSample := bitDepth / 8
	dataLen := buf.Len() * bytesPerSample
	channels := buf.Channels()
	sampleRate := buf.SampleRate()

	bw := bufio.NewWriter(w)

	// RIFF header
	bw.WriteString("RIFF")
	_ = binary.Write(bw, binary.LittleEndian, uint32(36+dataLen))
	bw.WriteString("WAVE")

	// fmt subchunk
	bw.WriteString("fmt ")
	_ = binary.Write(bw, binary.LittleEndian, uint32(16))
	_ = binary.Write(bw, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(bw, binary.LittleEndian, uint16(channels))
	_ = binary.Write(bw, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(bw, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	_ = binary.Write(bw, binary.LittleEndian, uint16(channels*bytesPerSample))
	_ = binary.Write(bw, binary.LittleEndian, uint16(bitDepth))

	// data subchunk
	bw.WriteString("data")
	_ = binary.Write(bw, binary.LittleEndian, uint32(dataLen))

	var scratch [4]byte
	for _, s := range buf.Samples() {
		s = float32(math.Max(-1, math.Min(1, float64(s))))
		switch bitDepth {
		case 8:
			scratch[0] = uint8(clampInt(int64(math.Round(float64(s)*128))+128, 0, 255))
		case 16:
			binary.LittleEndian.PutUint16(scratch[:], uint16(int16(clampInt(int64(math.Round(float64(s)*32768)), math.MinInt16, math.MaxInt16))))
		case 24:
			v := clampInt(int64(math.Round(float64(s)*8388608)), -8388608, 8388607)
			scratch[0], scratch[1], scratch[2] = byte(v), byte(v>>8), byte(v>>16)
		case 32:
			binary.LittleEndian.PutUint32(scratch[:], uint32(int32(clampInt(int64(math.Round(float64(s)*2147483648)), math.MinInt32, math.MaxInt32))))
		}
		if _, err := bw.Write(scratch[:bytesPerSample]); err != nil {
			return fmt.Errorf("failed to write samples: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write wav: %w", err)
	}
	return nil
}

// EncodeFile writes buf to path as a WAVE file.
func EncodeFile(path string, buf *audio.Buffer, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Encode(f, buf, bitDepth); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func clampInt(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
