// @focus: #sys { bell }
package bell

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

const (
	SampleRate    beep.SampleRate = 44100
	bytesPerFrame                 = 4 // stereo s16le

	toneDuration       = 600 * time.Millisecond
	toneAttack         = 5 * time.Millisecond
	fundamentalRelease = 550 * time.Millisecond
	overtoneRelease    = 200 * time.Millisecond
	fundamentalFreq    = 880.0  // A5
	overtoneFreq       = 1760.0 // octave up
	fundamentalMix     = 0.7
	overtoneMix        = 0.3

	// DefaultVolume is the linear gain applied when config leaves it unset
	DefaultVolume = 0.5
)

// sine generates a fixed-length sine wave
type sine struct {
	freq     float64
	phase    float64
	duration int
	position int
	rate     beep.SampleRate
}

func newSine(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &sine{
		freq:     freq,
		duration: rate.N(duration),
		rate:     rate,
	}
}

func (o *sine) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		val := math.Sin(2 * math.Pi * o.phase)
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *sine) Err() error { return nil }

// envelope applies linear attack and release to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := max(total-att-rel, 0)

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// gain wraps s in a linear volume control; zero or below is silent
// beep's Volume is logarithmic, math.Log2(0) is -Inf
func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Tone returns the bell streamer: an A5 ding with a decaying octave overtone
func Tone(volume float64) beep.Streamer {
	fund := newEnvelope(newSine(fundamentalFreq, toneDuration, SampleRate),
		toneDuration, toneAttack, fundamentalRelease, SampleRate)
	over := newEnvelope(newSine(overtoneFreq, toneDuration, SampleRate),
		toneDuration, toneAttack, overtoneRelease, SampleRate)

	mixed := beep.Mix(
		gain(fund, fundamentalMix),
		gain(over, overtoneMix),
	)
	return gain(beep.Take(SampleRate.N(toneDuration), mixed), volume)
}
