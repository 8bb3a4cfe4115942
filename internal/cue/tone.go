package cue

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// Channels is fixed to stereo; both channels carry the same signal
	Channels = 2

	bytesPerSample = 2 // 16-bit little endian
	fadeDuration   = 5 * time.Millisecond
)

// Tone describes a synthesized cue: a sweep from StartHz to EndHz
type Tone struct {
	StartHz  float64
	EndHz    float64
	Duration time.Duration
	Square   bool
}

// DefaultTones maps each cue kind to its sound
var DefaultTones = map[Kind]Tone{
	Countdown: {StartHz: 880, EndHz: 880, Duration: 120 * time.Millisecond},
	Go:        {StartHz: 660, EndHz: 1320, Duration: 350 * time.Millisecond},
	Buzzer:    {StartHz: 196, EndHz: 164, Duration: 700 * time.Millisecond, Square: true},
}

// Synthesize renders tone as interleaved signed 16-bit LE PCM.
// volume is clamped to [0,1]. Short fades at both ends avoid clicks.
func Synthesize(tone Tone, sampleRate int, volume float64) []byte {
	if sampleRate <= 0 || tone.Duration <= 0 {
		return nil
	}
	volume = math.Max(0, math.Min(1, volume))

	frames := framesFor(sampleRate, tone.Duration)
	fadeFrames := framesFor(sampleRate, fadeDuration)
	if fadeFrames*2 > frames {
		fadeFrames = frames / 2
	}

	out := make([]byte, frames*Channels*bytesPerSample)
	amplitude := volume * 0.8 * math.MaxInt16
	phase := 0.0
	for i := 0; i < frames; i++ {
		progress := float64(i) / float64(frames)
		freq := tone.StartHz + (tone.EndHz-tone.StartHz)*progress
		phase += 2 * math.Pi * freq / float64(sampleRate)

		v := math.Sin(phase)
		if tone.Square {
			// soften the square wave a little so it is less harsh
			v = math.Tanh(4 * v)
		}

		envelope := 1.0
		switch {
		case fadeFrames > 0 && i < fadeFrames:
			envelope = float64(i) / float64(fadeFrames)
		case fadeFrames > 0 && i >= frames-fadeFrames:
			envelope = float64(frames-1-i) / float64(fadeFrames)
		}

		sample := int16(v * envelope * amplitude)
		for ch := 0; ch < Channels; ch++ {
			offset := (i*Channels + ch) * bytesPerSample
			binary.LittleEndian.PutUint16(out[offset:], uint16(sample))
		}
	}
	return out
}

func framesFor(sampleRate int, d time.Duration) int {
	return int(int64(sampleRate) * int64(d) / int64(time.Second))
}
