package chime

import (
	"encoding/binary"
	"math"
	"time"
)

// fade is the ramp applied to both ends of a tone to avoid clicks.
const fade = 8 * time.Millisecond

// Tone renders a sine wave as PCM at the package sample rate. volume is
// clamped to [0, 1].
func Tone(freqHz float64, d time.Duration, volume float64) []byte {
	volume = math.Max(0, math.Min(1, volume))
	n := int(d.Seconds() * SampleRate)
	if n <= 0 {
		return nil
	}
	ramp := int(fade.Seconds() * SampleRate)
	if ramp*2 > n {
		ramp = n / 2
	}

	out := make([]byte, n*bytesPerSample)
	for i := 0; i < n; i++ {
		env := 1.0
		switch {
		case ramp > 0 && i < ramp:
			env = float64(i) / float64(ramp)
		case ramp > 0 && i >= n-ramp:
			env = float64(n-1-i) / float64(ramp)
		}
		v := math.Sin(2*math.Pi*freqHz*float64(i)/SampleRate) * volume * env
		binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(int16(v*math.MaxInt16)))
	}
	return out
}

// Silence renders d of silence.
func Silence(d time.Duration) []byte {
	n := int(d.Seconds() * SampleRate)
	if n <= 0 {
		return nil
	}
	return make([]byte, n*bytesPerSample)
}

// StepChime is the two-note alert played when a step finishes.
func StepChime() []byte {
	var out []byte
	out = append(out, Tone(880, 150*time.Millisecond, 0.5)...)
	out = append(out, Silence(60*time.Millisecond)...)
	out = append(out, Tone(1320, 220*time.Millisecond, 0.5)...)
	return out
}
