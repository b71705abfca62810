package tts

import "math"

const (
	// MinSpeed is the slowest accepted speaking rate.
	MinSpeed = 0.5
	// MaxSpeed is the fastest accepted speaking rate.
	MaxSpeed = 2.0
)

// ClampSpeed limits speed to [MinSpeed, MaxSpeed]. NaN becomes 1.0.
func ClampSpeed(speed float64) float64 {
	if math.IsNaN(speed) {
		return 1.0
	}
	return math.Max(MinSpeed, math.Min(MaxSpeed, speed))
}

// LengthScale converts a speaking rate into Piper's --length-scale, which
// stretches duration: 0.5x speed is 2.0, 2x speed is 0.5.
func LengthScale(speed float64) float64 {
	return 1.0 / ClampSpeed(speed)
}
