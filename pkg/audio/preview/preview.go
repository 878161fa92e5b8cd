// Package preview renders a timeline to audio with simple additive voices.
package preview

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"

	"github.com/DougThompson1976/i-love-emily/pkg/note"
)

// Options configures rendering. Zero fields take the defaults.
type Options struct {
	SampleRate int     // samples per second, default 44100
	BPM        float64 // beats (note.Unit) per minute, default 80
	Volume     float64 // overall gain in (0, 1], default 0.8
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
	if o.BPM <= 0 {
		o.BPM = 80
	}
	if o.Volume <= 0 || o.Volume > 1 {
		o.Volume = 0.8
	}
	return o
}

// Freq returns the equal-tempered frequency of a MIDI pitch.
func Freq(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

// WriteWAV renders t as 16-bit stereo WAV.
func WriteWAV(w io.WriteSeeker, t note.Timeline, opts Options) error {
	s, format, err := Stream(t, opts)
	if err != nil {
		return err
	}
	return wav.Encode(w, s, format)
}

// Stream returns t as a finite beep stream and the format it is in.
func Stream(t note.Timeline, opts Options) (beep.Streamer, beep.Format, error) {
	opts = opts.withDefaults()
	if len(t) == 0 {
		return nil, beep.Format{}, errors.New("preview: empty timeline")
	}
	format := beep.Format{SampleRate: beep.SampleRate(opts.SampleRate), NumChannels: 2, Precision: 2}
	samplesPer := float64(opts.SampleRate) * 60 / opts.BPM / float64(note.Unit)
	at := func(units int64) int { return int(math.Round(float64(units) * samplesPer)) }

	total := at(note.Last(t))
	voices := note.Voices(t)
	streams := make([]beep.Streamer, 0, len(voices))
	for _, v := range voices {
		var (
			parts  []beep.Streamer
			cursor int
		)
		for _, n := range note.ByVoice(t, v) {
			start, end := max(at(n.Start), cursor), at(n.End())
			if end <= start {
				continue
			}
			if start > cursor {
				parts = append(parts, beep.Silence(start-cursor))
			}
			if n.Pitch == note.Rest {
				parts = append(parts, beep.Silence(end-start))
			} else {
				parts = append(parts, newTone(Freq(n.Pitch), end-start, format.SampleRate))
			}
			cursor = end
		}
		if cursor < total {
			parts = append(parts, beep.Silence(total-cursor))
		}
		streams = append(streams, beep.Seq(parts...))
	}

	// Each voice peaks near 1, so share the headroom between them.
	gain := opts.Volume / float64(len(streams))
	mixed := &effects.Volume{Streamer: beep.Mix(streams...), Base: 2, Volume: math.Log2(gain)}
	return beep.Take(total, mixed), format, nil
}

// tone is a decaying sum of a few harmonics with a short attack and release.
type tone struct {
	freq    float64
	rate    float64
	pos     int
	samples int
	attack  int
	release int
}

var partials = []struct{ ratio, amp, decay float64 }{
	{1, 1, 1},
	{2, 0.4, 1.5},
	{3, 0.2, 2},
	{4, 0.1, 2.5},
}

const partialSum = 1.7

func newTone(freq float64, samples int, rate beep.SampleRate) *tone {
	edge := min(rate.N(10*time.Millisecond), samples/4)
	return &tone{freq: freq, rate: float64(rate), samples: samples, attack: edge, release: edge}
}

func (o *tone) Stream(samples [][2]float64) (int, bool) {
	if o.pos >= o.samples {
		return 0, false
	}
	n := 0
	for i := range samples {
		if o.pos >= o.samples {
			break
		}
		secs := float64(o.pos) / o.rate
		var v float64
		for _, p := range partials {
			v += p.amp * math.Exp(-p.decay*secs) * math.Sin(2*math.Pi*o.freq*p.ratio*secs)
		}
		v = v / partialSum * o.envelope()
		samples[i] = [2]float64{v, v}
		o.pos++
		n++
	}
	return n, true
}

func (o *tone) envelope() float64 {
	switch {
	case o.attack > 0 && o.pos < o.attack:
		return float64(o.pos) / float64(o.attack)
	case o.release > 0 && o.pos >= o.samples-o.release:
		return float64(o.samples-o.pos) / float64(o.release)
	}
	return 1
}

func (o *tone) Err() error { return nil }
