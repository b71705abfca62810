package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/dgnsrekt/voicebox/internal/audio"
)

// HeaderSize is the size of a canonical PCM WAVE header.
const HeaderSize = 44

var (
	// ErrDecode is wrapped by every error returned from Decode.
	ErrDecode = errors.New("wav decode failed")

	ErrTooShort            = fmt.Errorf("%w: input shorter than %d bytes", ErrDecode, HeaderSize)
	ErrNotRIFF             = fmt.Errorf("%w: missing RIFF tag", ErrDecode)
	ErrNoData              = fmt.Errorf("%w: no data chunk", ErrDecode)
	ErrTruncated           = fmt.Errorf("%w: data chunk runs past end of input", ErrDecode)
	ErrUnsupportedBitDepth = fmt.Errorf("%w: unsupported bit depth", ErrDecode)
	ErrBadFormat           = fmt.Errorf("%w: invalid channel count or sample rate", ErrDecode)
)

// Decode parses a WAVE container into a normalized sample buffer. It never
// panics on malformed input.
func Decode(data []byte) (*audio.Buffer, error) {
	if len(data) < HeaderSize {
		return nil, ErrTooShort
	}
	if string(data[0:4]) != "RIFF" {
		return nil, ErrNotRIFF
	}

	channels := int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(data[24:28]))
	bitDepth := int(binary.LittleEndian.Uint16(data[34:36]))
	if channels == 0 || sampleRate == 0 || sampleRate > 1<<24 {
		return nil, fmt.Errorf("%w: %d channels @ %d Hz", ErrBadFormat, channels, sampleRate)
	}

	payload, err := findData(data)
	if err != nil {
		return nil, err
	}

	samples, err := convert(payload, bitDepth)
	if err != nil {
		return nil, err
	}

	// Drop a trailing partial frame.
	samples = samples[:len(samples)-len(samples)%channels]
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %d byte data chunk holds no complete frame", ErrTruncated, len(payload))
	}

	buf, err := audio.NewBuffer(samples, channels, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return buf, nil
}

// DecodeFile reads and decodes the file at path.
func DecodeFile(path string) (*audio.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return Decode(data)
}

func findData(data []byte) ([]byte, error) {
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int64(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		pos += 8

		if id == "data" {
			if size == 0 {
				return nil, ErrNoData
			}
			if int64(pos)+size > int64(len(data)) {
				return nil, fmt.Errorf("%w: declared %d bytes, have %d", ErrTruncated, size, len(data)-pos)
			}
			return data[pos : pos+int(size)], nil
		}

		if int64(pos)+size > int64(len(data)) {
			break
		}
		pos += int(size)
	}
	return nil, ErrNoData
}

func convert(payload []byte, bitDepth int) ([]float32, error) {
	switch bitDepth {
	case 8:
		out := make([]float32, len(payload))
		for i, b := range payload {
			out[i] = (float32(b) - 128) / 128
		}
		return out, nil

	case 16:
		out := make([]float32, len(payload)/2)
		for i := range out {
			v := int16(binary.LittleEndian.Uint16(payload[i*2:]))
			out[i] = float32(v) / 32768
		}
		return out, nil

	case 24:
		out := make([]float32, len(payload)/3)
		for i := range out {
			b := payload[i*3:]
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^0xffffff
			}
			out[i] = float32(v) / 8388608
		}
		return out, nil

	case 32:
		out := make([]float32, len(payload)/4)
		for i := range out {
			v := int32(binary.LittleEndian.Uint32(payload[i*4:]))
			out[i] = float32(float64(v) / 2147483648)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
}
